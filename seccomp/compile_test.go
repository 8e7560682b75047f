package seccomp

import (
	"testing"

	"seccage/profile"
	"seccage/syscalltable"
)

func mustTable(t *testing.T) *syscalltable.Table {
	t.Helper()
	tbl, err := syscalltable.ForArch(syscalltable.ArchX86_64)
	if err != nil {
		t.Fatalf("ForArch: %v", err)
	}
	return tbl
}

func TestCompile_InstructionCount(t *testing.T) {
	tbl := mustTable(t)

	tests := []struct {
		name    string
		allowed []string
	}{
		{"empty", nil},
		{"one", []string{"read"}},
		{"several", []string{"read", "write", "execve", "exit", "openat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &profile.Profile{
				Syscalls: profile.SyscallPolicy{
					DefaultAction: profile.ActionKill,
					Allowed:       tt.allowed,
				},
			}
			prog, _, err := Compile(p, tbl)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			want := 4 + len(tt.allowed) + 2
			if len(prog) != want {
				t.Errorf("len(prog) = %d, want %d", len(prog), want)
			}
		})
	}
}

func TestCompile_BranchOffsetsInBounds(t *testing.T) {
	tbl := mustTable(t)
	all := tbl.Names()
	names := all
	if len(names) > 250 {
		names = names[:250]
	}
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionKill,
			Allowed:       names,
		},
	}
	prog, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i, inst := range prog {
		if inst.Jt > 255 || inst.Jf > 255 {
			t.Errorf("instruction %d: branch offset out of range: jt=%d jf=%d", i, inst.Jt, inst.Jf)
		}
	}
}

func TestCompile_ProgramTooLarge(t *testing.T) {
	tbl := mustTable(t)
	names := tbl.Names()
	if len(names) <= 252 {
		t.Skip("syscall table too small to exercise the size limit")
	}
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionKill,
			Allowed:       names,
		},
	}
	_, _, err := Compile(p, tbl)
	if err == nil {
		t.Fatalf("expected error for oversized program")
	}
}

// simulate interprets a compiled program the way the kernel's BPF
// interpreter would for a single (arch, syscallNR) input, returning the
// resulting seccomp return code.
func simulate(prog Program, arch, nr uint32) uint32 {
	data := map[uint32]uint32{offsetArch: arch, offsetNR: nr}
	var acc uint32
	pc := 0
	for {
		inst := prog[pc]
		switch inst.Code {
		case bpfLD | bpfW | bpfABS:
			acc = data[inst.K]
			pc++
		case bpfJMP | bpfJEQ | bpfK:
			if acc == inst.K {
				pc += 1 + int(inst.Jt)
			} else {
				pc += 1 + int(inst.Jf)
			}
		case bpfRET | bpfK:
			return inst.K
		default:
			panic("simulate: unhandled opcode")
		}
	}
}

func TestCompile_AllowsListedSyscalls(t *testing.T) {
	tbl := mustTable(t)
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionKill,
			Allowed:       []string{"read", "write", "exit"},
		},
	}
	prog, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, name := range []string{"read", "write", "exit"} {
		nr, _ := tbl.Lookup(name)
		if got := simulate(prog, AuditArchX86_64, nr); got != RetAllow {
			t.Errorf("simulate(%s) = %#x, want RetAllow", name, got)
		}
	}

	execveNR, _ := tbl.Lookup("execve")
	if got := simulate(prog, AuditArchX86_64, execveNR); got != RetKillProcess {
		t.Errorf("simulate(execve) = %#x, want RetKillProcess", got)
	}
}

func TestCompile_ArchMismatchKills(t *testing.T) {
	tbl := mustTable(t)
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionAllow,
			Allowed:       []string{"read"},
		},
	}
	prog, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	nr, _ := tbl.Lookup("read")
	if got := simulate(prog, AuditArchAArch64, nr); got != RetKillProcess {
		t.Errorf("simulate with foreign arch = %#x, want RetKillProcess", got)
	}
}

func TestCompile_ErrnoDefaultWithEmptyAllowed(t *testing.T) {
	tbl := mustTable(t)
	errno := 1
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionErrno,
			ErrnoValue:    &errno,
		},
	}
	prog, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(prog) != 6 {
		t.Fatalf("len(prog) = %d, want 6", len(prog))
	}
	nr, _ := tbl.Lookup("write")
	want := errnoRet(errno)
	if got := simulate(prog, AuditArchX86_64, nr); got != want {
		t.Errorf("simulate(write) = %#x, want %#x", got, want)
	}
}

func TestCompile_MissingErrnoValue(t *testing.T) {
	tbl := mustTable(t)
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{DefaultAction: profile.ActionErrno},
	}
	if _, _, err := Compile(p, tbl); err == nil {
		t.Fatalf("expected error for missing errno_value")
	}
}

func TestCompile_UnknownSyscallWarnsAndSkips(t *testing.T) {
	tbl := mustTable(t)
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionKill,
			Allowed:       []string{"read", "not_a_real_syscall"},
		},
	}
	prog, warnings, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if len(prog) != 4+1+2 {
		t.Errorf("len(prog) = %d, want %d", len(prog), 4+1+2)
	}
}

func TestCompile_DeterministicAcrossCalls(t *testing.T) {
	tbl := mustTable(t)
	p := &profile.Profile{
		Syscalls: profile.SyscallPolicy{
			DefaultAction: profile.ActionKill,
			Allowed:       []string{"read", "write", "execve"},
		},
	}
	a, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, _, err := Compile(p, tbl)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("instruction %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
