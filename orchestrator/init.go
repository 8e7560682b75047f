package orchestrator

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"seccage/capability"
	serrors "seccage/errors"
	"seccage/mount"
	"seccage/profile"
	"seccage/seccomp"
	"seccage/syscalltable"
	"seccage/utils"
)

// Init runs inside the re-exec'd child, after the kernel has already put
// it in a fresh mount namespace (when one was requested). It performs the
// sandbox assembly protocol in the fixed order the kernel's own
// dependencies require — bind mounts before the capability transition,
// capabilities before no-new-privs, no-new-privs before the seccomp
// install, and the install immediately before execve — then replaces
// itself with targetArgs. A successful execve never returns to this
// function at all; any return from Init means setup failed, and the
// failure has already been relayed to the parent over the sync pipe so
// the launcher can report it without guessing from an exit code alone.
func Init(targetArgs []string) error {
	pipe := utils.ChildEndFromFD(syncPipeFD)

	err := setup(targetArgs)
	if sigErr := pipe.SignalError(err); sigErr != nil {
		return serrors.Wrap(sigErr, serrors.ErrInternal, "report setup failure to parent")
	}
	return err
}

// setup performs the sandbox assembly protocol in the fixed order the
// kernel's own dependencies require, then execs targetArgs. It returns
// only on failure.
func setup(targetArgs []string) error {
	// Capabilities, no-new-privs and the seccomp filter are per-thread, so
	// they must be applied on the same OS thread that calls execve.
	runtime.LockOSThread()

	profileName := os.Getenv(envProfile)
	searchPath := splitSearchPath(os.Getenv(envSearchPath))
	bindSpecs := splitLines(os.Getenv(envBindMounts))

	p, err := profile.Load(profileName, searchPath)
	if err != nil {
		return err
	}

	mounts, err := profile.ParseBindMountSpecs(bindSpecs)
	if err != nil {
		return err
	}
	if err := mount.Apply(mounts); err != nil {
		return err
	}

	if err := capability.Apply(p.Capabilities); err != nil {
		return err
	}

	tbl, err := syscalltable.Host()
	if err != nil {
		return err
	}
	prog, _, err := seccomp.Compile(p, tbl)
	if err != nil {
		return err
	}
	if err := seccomp.Install(prog); err != nil {
		return err
	}

	if len(targetArgs) == 0 {
		return serrors.New(serrors.ErrProfileInvalid, "exec target", "no target program given")
	}
	binPath, err := exec.LookPath(targetArgs[0])
	if err != nil {
		return serrors.Wrap(err, serrors.ErrInternal, "resolve target program path")
	}

	execErr := syscall.Exec(binPath, targetArgs, os.Environ())
	return serrors.Wrap(execErr, serrors.ErrInternal, "execve target program")
}

func splitSearchPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, string(os.PathListSeparator))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
