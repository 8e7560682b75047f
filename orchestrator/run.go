package orchestrator

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	serrors "seccage/errors"
	"seccage/logging"
	"seccage/profile"
	"seccage/seccomp"
	"seccage/syscalltable"
	"seccage/utils"
)

// syncPipeFD is the file descriptor the child finds its sync pipe's write
// end on. cmd.ExtraFiles appends after stdin/stdout/stderr, so the first
// (and only) extra file always lands on fd 3.
const syncPipeFD = 3

// hiddenSubcommand is the cobra command name the launcher re-execs itself
// with to run Init inside the child's new namespaces. It is never a
// user-facing command.
const hiddenSubcommand = "__sandbox-init"

// Run validates cfg, compiles its profile, and re-execs the launcher
// binary across a fresh mount namespace (when bind mounts are
// configured) to assemble and run the sandbox. It blocks until the
// sandboxed program exits and returns the exit code the launcher itself
// should exit with.
func Run(ctx context.Context, cfg Config) (int, error) {
	searchPath := cfg.SearchPath
	if searchPath == nil {
		searchPath = profile.SearchPath()
	}

	p, err := profile.Load(cfg.ProfileName, searchPath)
	if err != nil {
		return 1, err
	}

	mounts, err := profile.ParseBindMountSpecs(cfg.BindMountSpecs)
	if err != nil {
		return 1, err
	}
	for _, m := range mounts {
		if _, err := os.Stat(m.Source); err != nil {
			return 1, serrors.WrapWithDetail(err, serrors.ErrSourceMissing, "validate bind mount", m.Source)
		}
	}

	if len(cfg.Args) == 0 {
		return 1, serrors.New(serrors.ErrProfileInvalid, "run sandbox", "no target program given after --")
	}

	tbl, err := syscalltable.Host()
	if err != nil {
		return 1, err
	}

	prog, warnings, err := seccomp.Compile(p, tbl)
	if err != nil {
		return 1, err
	}
	for _, w := range warnings {
		logging.Warn("profile compile warning", "profile", p.Name, "warning", w)
	}
	_ = prog // the child recompiles the identical program from the same profile; see Init.

	self, err := os.Executable()
	if err != nil {
		return 1, serrors.Wrap(err, serrors.ErrForkFailed, "resolve own executable")
	}

	pipe, err := utils.NewSyncPipe()
	if err != nil {
		return 1, serrors.Wrap(err, serrors.ErrForkFailed, "create setup sync pipe")
	}
	defer pipe.Close()

	cmd := exec.Command(self, hiddenSubcommand)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Args = append(cmd.Args, cfg.Args...)
	cmd.ExtraFiles = []*os.File{pipe.ChildFile()}

	cmd.Env = append(os.Environ(),
		envProfile+"="+cfg.ProfileName,
		envSearchPath+"="+strings.Join(searchPath, string(os.PathListSeparator)),
		envBindMounts+"="+strings.Join(cfg.BindMountSpecs, "\n"),
	)

	var cloneflags uintptr
	if len(mounts) > 0 {
		cloneflags |= syscall.CLONE_NEWNS
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: cloneflags,
		Setpgid:    true,
	}

	if err := cmd.Start(); err != nil {
		return 1, serrors.Wrap(err, serrors.ErrForkFailed, "start sandboxed process")
	}
	pipe.CloseChild()

	setupErrCh := make(chan error, 1)
	go func() { setupErrCh <- pipe.WaitWithError() }()

	// Forwarding must outlive any cancellation of ctx and stop only once
	// the sandboxed process has exited.
	fwdCtx, stopForwarding := context.WithCancel(context.WithoutCancel(ctx))
	forwardSignals(fwdCtx, cmd.Process.Pid)

	waitErr := cmd.Wait()
	stopForwarding()
	if setupErr := <-setupErrCh; setupErr != nil {
		logging.Error("sandbox setup failed before exec", "error", setupErr)
		return 1, serrors.WrapWithDetail(setupErr, serrors.ErrInternal, "assemble sandbox", setupErr.Error())
	}
	return classify(waitErr)
}

// forwardSignals relays SIGINT/SIGTERM delivered to the launcher to the
// sandboxed process's entire group, since the child is the group leader
// (Setpgid above) and may itself have spawned descendants.
func forwardSignals(ctx context.Context, pid int) {
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case sig := <-sigCh:
				s, ok := sig.(syscall.Signal)
				if !ok {
					continue
				}
				_ = syscall.Kill(-pid, s)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// classify turns the result of cmd.Wait() into the launcher's own exit
// code. A seccomp-killed child (SIGSYS) exits with exitCodeSeccompViolation
// and is additionally logged and returned as an ErrSeccompViolation error;
// other signals map to 128+signal with no error.
func classify(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}

	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return 1, serrors.Wrap(waitErr, serrors.ErrInternal, "wait for sandboxed process")
	}

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 1, serrors.Wrap(waitErr, serrors.ErrInternal, "wait for sandboxed process")
	}

	if status.Signaled() {
		sig := status.Signal()
		if sig == syscall.SIGSYS {
			logging.Error("sandboxed process killed by seccomp policy")
			return exitCodeSeccompViolation, serrors.New(serrors.ErrSeccompViolation, "run sandbox", "process received SIGSYS under the installed filter")
		}
		return 128 + int(sig), nil
	}

	return status.ExitStatus(), nil
}

// exitCodeSeccompViolation is the launcher's exit code for a child killed
// by its own seccomp filter: 128 + SIGSYS (31). The number alone equals
// what the generic 128+signal rule gives; the policy rejection is told
// apart from an ordinary signal death by the error classify returns.
const exitCodeSeccompViolation = 159
