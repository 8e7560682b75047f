package syscalltable

import "testing"

func TestForArch_KnownArches(t *testing.T) {
	for _, arch := range []Arch{ArchX86_64, ArchAArch64} {
		tbl, err := ForArch(arch)
		if err != nil {
			t.Fatalf("ForArch(%s): %v", arch, err)
		}
		if tbl.Arch() != arch {
			t.Errorf("Arch() = %s, want %s", tbl.Arch(), arch)
		}
	}
}

func TestForArch_Unknown(t *testing.T) {
	if _, err := ForArch("mips"); err == nil {
		t.Errorf("expected error for unknown architecture")
	}
}

func TestLookup_X86_64(t *testing.T) {
	tbl, err := ForArch(ArchX86_64)
	if err != nil {
		t.Fatalf("ForArch: %v", err)
	}

	tests := []struct {
		name string
		want uint32
	}{
		{"read", 0}, {"write", 1}, {"execve", 59}, {"exit", 60}, {"openat", 257},
	}
	for _, tt := range tests {
		got, ok := tbl.Lookup(tt.name)
		if !ok {
			t.Errorf("Lookup(%q) not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	tbl, _ := ForArch(ArchX86_64)
	if _, ok := tbl.Lookup("not_a_syscall"); ok {
		t.Errorf("expected unknown syscall to be absent")
	}
}

func TestLookupWithAlias(t *testing.T) {
	tbl, _ := ForArch(ArchX86_64)
	want, _ := tbl.Lookup("wait4")
	got, ok := tbl.LookupWithAlias("waitpid")
	if !ok {
		t.Fatalf("LookupWithAlias(waitpid) not found")
	}
	if got != want {
		t.Errorf("LookupWithAlias(waitpid) = %d, want %d (wait4)", got, want)
	}
}
