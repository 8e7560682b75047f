// Package syscalltable provides the static, architecture-specific mapping
// from syscall name to syscall number consumed by the BPF filter compiler.
package syscalltable

import (
	"runtime"

	serrors "seccage/errors"
)

// Arch identifies a supported target architecture.
type Arch string

const (
	ArchX86_64  Arch = "x86_64"
	ArchAArch64 Arch = "aarch64"
)

// Table is an immutable, architecture-specific syscall name-to-number
// mapping, constructed once at process start and shared by reference
// thereafter. It is never mutated.
type Table struct {
	arch    Arch
	numbers map[string]uint32
}

// Arch returns the architecture this table was built for.
func (t *Table) Arch() Arch { return t.arch }

// Lookup returns the syscall number for name, or ok=false if name is not
// present in this architecture's table (an "unknown syscall").
func (t *Table) Lookup(name string) (num uint32, ok bool) {
	num, ok = t.numbers[name]
	return num, ok
}

// Names returns every syscall name known to this table, in no particular
// order. Used by callers that need to exercise the full table rather than
// look up one name at a time.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.numbers))
	for name := range t.numbers {
		names = append(names, name)
	}
	return names
}

// tables holds the compile-time-initialized per-architecture tables. This
// is the idiomatic Go rendition of a "static perfect-hash lookup": a plain
// map populated once at package init and never written to again.
var tables = map[Arch]map[string]uint32{
	ArchX86_64:  x86_64Table,
	ArchAArch64: aarch64Table,
}

// aliases documents syscall names that glibc wraps over a different
// underlying kernel syscall. LookupWithAlias resolves an alias to its
// target before consulting the architecture table.
var aliases = map[string]string{
	// waitpid(2) is implemented by the kernel's wait4 syscall.
	"waitpid": "wait4",
	// No alias is defined for poll(2): x86_64 has a native poll number,
	// and the aarch64 table carries neither poll nor ppoll.
}

// ForArch returns the static syscall table for arch, or ErrUnsupportedArch
// if the architecture is not known.
func ForArch(arch Arch) (*Table, error) {
	numbers, ok := tables[arch]
	if !ok {
		return nil, serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "resolve syscall table", string(arch))
	}
	return &Table{arch: arch, numbers: numbers}, nil
}

// Host returns the syscall table for the architecture this binary was
// compiled for, refusing rather than guessing when the host architecture
// has no table (the loader must refuse rather than produce an incorrect
// filter for a mismatched architecture).
func Host() (*Table, error) {
	switch runtime.GOARCH {
	case "amd64":
		return ForArch(ArchX86_64)
	case "arm64":
		return ForArch(ArchAArch64)
	default:
		return nil, serrors.WrapWithDetail(nil, serrors.ErrProfileInvalid, "resolve host syscall table", runtime.GOARCH)
	}
}

// resolveAlias follows a documented glibc-wrapper alias, returning name
// unchanged if it is not an alias.
func resolveAlias(name string) string {
	if target, ok := aliases[name]; ok {
		return target
	}
	return name
}

// LookupWithAlias looks up name after resolving any documented alias.
func (t *Table) LookupWithAlias(name string) (uint32, bool) {
	return t.Lookup(resolveAlias(name))
}
