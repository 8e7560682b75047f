// Package mount performs the bind mounts a sandbox profile requests inside
// the process's own mount namespace, before the capability transition and
// seccomp install that follow it.
package mount

import (
	"os"
	"path/filepath"
	"syscall"

	serrors "seccage/errors"
	"seccage/logging"
	"seccage/profile"
)

const (
	msBind     = syscall.MS_BIND
	msRec      = syscall.MS_REC
	msRemount  = syscall.MS_REMOUNT
	msRdonly   = syscall.MS_RDONLY
	msNosuid   = syscall.MS_NOSUID
	msNodev    = syscall.MS_NODEV
)

// Apply performs each bind mount in mounts, in order. Later entries are
// never deduplicated against earlier ones — a mount targeting a path
// already mounted into simply shadows it, matching ordinary mount(2)
// stacking semantics. The first failure aborts the remaining mounts.
func Apply(mounts []profile.BindMount) error {
	for _, m := range mounts {
		if err := one(m); err != nil {
			return err
		}
	}
	return nil
}

func one(m profile.BindMount) error {
	if _, err := os.Stat(m.Source); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrSourceMissing, "bind mount", m.Source)
	}

	if err := os.MkdirAll(filepath.Dir(m.Target), 0755); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrMountFailed, "bind mount", "create target parent "+m.Target)
	}
	if err := ensureTarget(m); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrMountFailed, "bind mount", "create target "+m.Target)
	}

	var flags uintptr = msBind
	if m.Recursive {
		flags |= msRec
	}
	if err := syscall.Mount(m.Source, m.Target, "", flags, ""); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrMountFailed, "bind mount", m.Source+" -> "+m.Target)
	}

	if m.ReadOnly {
		remountFlags := msRemount | msBind | msRdonly | msNosuid | msNodev
		if m.Recursive {
			remountFlags |= msRec
		}
		if err := syscall.Mount("", m.Target, "", uintptr(remountFlags), ""); err != nil {
			return serrors.WrapWithDetail(err, serrors.ErrRemountFailed, "bind mount", m.Target)
		}
	}

	logging.Debug("bind mounted", "source", m.Source, "target", m.Target, "readonly", m.ReadOnly)
	return nil
}

// ensureTarget creates the mount point at m.Target, matching the source's
// kind: a directory for a directory source, an empty regular file for a
// file source, so the subsequent bind mount has something to attach to.
func ensureTarget(m profile.BindMount) error {
	srcInfo, err := os.Stat(m.Source)
	if err != nil {
		return err
	}

	if srcInfo.IsDir() {
		return os.MkdirAll(m.Target, 0755)
	}

	if _, err := os.Stat(m.Target); os.IsNotExist(err) {
		f, err := os.OpenFile(m.Target, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}
