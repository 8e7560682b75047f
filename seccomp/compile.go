// Package seccomp compiles a profile's syscall policy into a classic BPF
// program and installs it via the kernel's seccomp filter mode.
package seccomp

import (
	"seccage/profile"
	"seccage/syscalltable"
)

// BPF instruction classes and operators (linux/filter.h / linux/bpf_common.h).
const (
	bpfLD  = 0x00
	bpfJMP = 0x05
	bpfRET = 0x06
	bpfW   = 0x00
	bpfABS = 0x20
	bpfJEQ = 0x10
	bpfK   = 0x00
)

// Seccomp data record field offsets (struct seccomp_data).
const (
	offsetNR   = 0
	offsetArch = 4
)

// Architecture audit identifiers (linux/audit.h AUDIT_ARCH_*).
const (
	AuditArchX86_64  = 0xc000003e
	AuditArchAArch64 = 0xc00000b7
)

// Seccomp return-action codes (linux/seccomp.h SECCOMP_RET_*). The kernel's
// ABI defines these exact values; the compiler must emit them verbatim.
const (
	RetKillProcess uint32 = 0x80000000
	RetErrnoBase   uint32 = 0x00050000
	RetAllow       uint32 = 0x7fff0000
)

// Instruction is a single classic BPF instruction: a 4-tuple of opcode,
// true-branch offset, false-branch offset, and a 32-bit immediate. Jt/Jf
// count instructions past the jump itself, never absolute addresses.
type Instruction struct {
	Code uint16
	Jt   uint8
	Jf   uint8
	K    uint32
}

// Program is an ordered, immutable sequence of compiled BPF instructions
// implementing one profile's syscall policy.
type Program []Instruction

// auditArchFor returns the audit architecture identifier matching a
// syscalltable.Arch, used to gate the filter to the host architecture.
func auditArchFor(arch syscalltable.Arch) (uint32, bool) {
	switch arch {
	case syscalltable.ArchX86_64:
		return AuditArchX86_64, true
	case syscalltable.ArchAArch64:
		return AuditArchAArch64, true
	default:
		return 0, false
	}
}

// errnoRet encodes an errno return value per the seccomp ABI: the low 16
// bits carry the errno, the high bits are the SECCOMP_RET_ERRNO action.
func errnoRet(code int) uint32 {
	return RetErrnoBase | (uint32(code) & 0xFFFF)
}

// Compile synthesizes the classic BPF program implementing p's syscall
// policy against tbl. It never fails on an unrecognized syscall name —
// unrecognized names are skipped (the caller is responsible for surfacing
// any accumulated warnings) — but does fail if the compiled program would
// require a forward branch offset beyond the 8-bit instruction limit.
//
// Emitted instruction order, per the fixed two-pass construction: first
// the allowed syscall numbers are resolved and N and T = 4+N+2 computed,
// then every comparison's true-offset is derived from that single formula
// (jt = N - i) rather than recomputed ad hoc at each call site.
func Compile(p *profile.Profile, tbl *syscalltable.Table) (Program, []string, error) {
	auditArch, ok := auditArchFor(tbl.Arch())
	if !ok {
		return nil, nil, errUnsupportedArch(tbl.Arch())
	}

	allowedNums, warnings := resolveAllowed(p.Syscalls.Allowed, tbl)

	n := len(allowedNums)
	total := 4 + n + 2
	if n > 255 { // the largest true-offset is jt = N - 0 = N
		return nil, warnings, errProgramTooLarge(total)
	}

	defaultRet, err := defaultActionRet(p.Syscalls)
	if err != nil {
		return nil, warnings, err
	}

	prog := make(Program, 0, total)

	// 1-3: load arch, compare, kill on mismatch.
	prog = append(prog, stmt(bpfLD|bpfW|bpfABS, offsetArch))
	prog = append(prog, jump(bpfJMP|bpfJEQ|bpfK, auditArch, 1, 0))
	prog = append(prog, stmt(bpfRET|bpfK, RetKillProcess))

	// 4: load syscall number.
	prog = append(prog, stmt(bpfLD|bpfW|bpfABS, offsetNR))

	// 5: one comparison per allowed syscall, true branch targets ALLOW at T-1.
	for i, num := range allowedNums {
		jt := uint8(n - i)
		prog = append(prog, jump(bpfJMP|bpfJEQ|bpfK, num, jt, 0))
	}

	// 6: default-action terminator.
	prog = append(prog, stmt(bpfRET|bpfK, defaultRet))

	// 7: ALLOW terminator.
	prog = append(prog, stmt(bpfRET|bpfK, RetAllow))

	return prog, warnings, nil
}

// resolveAllowed maps each allowed syscall name to its number, in the
// order given, dropping (and warning about) any name absent from tbl.
func resolveAllowed(names []string, tbl *syscalltable.Table) ([]uint32, []string) {
	var nums []uint32
	var warnings []string
	for _, name := range names {
		num, ok := tbl.LookupWithAlias(name)
		if !ok {
			warnings = append(warnings, "unknown syscall: "+name)
			continue
		}
		nums = append(nums, num)
	}
	return nums, warnings
}

func defaultActionRet(policy profile.SyscallPolicy) (uint32, error) {
	switch policy.DefaultAction {
	case profile.ActionKill:
		return RetKillProcess, nil
	case profile.ActionErrno:
		if policy.ErrnoValue == nil {
			return 0, errMissingErrno()
		}
		return errnoRet(*policy.ErrnoValue), nil
	case profile.ActionAllow:
		return RetAllow, nil
	default:
		return 0, errUnknownAction(string(policy.DefaultAction))
	}
}

func stmt(code uint16, k uint32) Instruction {
	return Instruction{Code: code, Jt: 0, Jf: 0, K: k}
}

func jump(code uint16, k uint32, jt, jf uint8) Instruction {
	return Instruction{Code: code, Jt: jt, Jf: jf, K: k}
}
