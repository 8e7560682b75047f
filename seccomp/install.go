package seccomp

import (
	"unsafe"

	"golang.org/x/sys/unix"

	serrors "seccage/errors"
)

// sockFilter is the kernel ABI layout for a single classic BPF instruction
// (struct sock_filter, linux/filter.h). Instruction and sockFilter share
// the same field layout by construction; sockFilter exists only because
// the kernel requires this exact, unexported wire shape.
type sockFilter struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// sockFprog is the kernel ABI layout for a BPF program handed to prctl
// (struct sock_fprog, linux/filter.h).
type sockFprog struct {
	Len    uint16
	Filter *sockFilter
}

// Install sets the calling thread's no-new-privileges bit and installs
// prog as its seccomp filter, in that order — the kernel refuses
// PR_SET_SECCOMP for an unprivileged caller without no_new_privs set
// first. It must be called from the thread that will exec the sandboxed
// program: seccomp filters are per-thread and are not retroactively
// applied to sibling threads.
func Install(prog Program) error {
	if len(prog) == 0 {
		return serrors.WrapWithDetail(nil, serrors.ErrSeccompInstallFailed, "install filter", "empty program")
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrSeccompInstallFailed, "install filter", "prctl(PR_SET_NO_NEW_PRIVS)")
	}

	raw := make([]sockFilter, len(prog))
	for i, inst := range prog {
		raw[i] = sockFilter{Code: inst.Code, Jt: inst.Jt, Jf: inst.Jf, K: inst.K}
	}

	fprog := sockFprog{
		Len:    uint16(len(raw)),
		Filter: &raw[0],
	}

	if err := unix.Prctl(unix.PR_SET_SECCOMP, unix.SECCOMP_MODE_FILTER, uintptr(unsafe.Pointer(&fprog)), 0, 0); err != nil {
		return serrors.WrapWithDetail(err, serrors.ErrSeccompInstallFailed, "install filter", "prctl(PR_SET_SECCOMP)")
	}

	return nil
}
