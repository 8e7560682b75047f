// Package profile defines the sandbox profile data model: the typed,
// in-memory representation of a loaded JSON security profile.
package profile

import "encoding/json"

// DefaultAction is the action applied to any syscall not otherwise
// classified by the policy.
type DefaultAction string

const (
	// ActionKill terminates the process with SIGSYS on a disallowed syscall.
	ActionKill DefaultAction = "kill"
	// ActionErrno returns the configured errno to the caller instead of killing it.
	ActionErrno DefaultAction = "errno"
	// ActionAllow permits every syscall; names in Blocked are not denied.
	ActionAllow DefaultAction = "allow"
)

// Profile is the validated, immutable in-memory representation of a loaded
// security profile. A Profile is produced exclusively by Load and is never
// mutated after construction; its fields are referenced, not copied, by
// downstream components.
type Profile struct {
	// Name is the profile's short identifying name (e.g. "minimal").
	Name string `json:"profile_name"`

	// Description is a human-readable summary of the profile's intent.
	Description string `json:"description,omitempty"`

	// Version is a free-form semantic version string.
	Version string `json:"version,omitempty"`

	// Syscalls is the syscall policy applied by the BPF filter compiler.
	Syscalls SyscallPolicy `json:"syscalls"`

	// Capabilities is the optional capability policy. Nil means the
	// sandbox orchestrator does not touch the process's capability sets.
	Capabilities *CapabilityPolicy `json:"capabilities,omitempty"`
}

// SyscallPolicy describes which syscalls the compiled BPF filter permits.
type SyscallPolicy struct {
	// DefaultAction governs any syscall not present in Allowed.
	DefaultAction DefaultAction `json:"default_action"`

	// ErrnoValue is the errno returned when DefaultAction is "errno".
	// Required and validated to be in 1..4095 in that case.
	ErrnoValue *int `json:"errno_value,omitempty"`

	// Allowed is the set of syscall names permitted regardless of
	// DefaultAction. Order is irrelevant; duplicates are coalesced by Load.
	Allowed []string `json:"allowed,omitempty"`

	// Blocked documents syscall names the profile author intends to deny.
	// It never influences filter generation under any DefaultAction — the
	// compiler's fixed instruction-count invariant leaves no room for it
	// to add comparisons — but Load still rejects overlap with Allowed.
	Blocked []string `json:"blocked,omitempty"`

	// Conditions preserves any per-syscall argument-value condition
	// objects found in the source JSON verbatim, for forward-compatible
	// round-tripping. seccomp.Compile never reads this field: every name
	// in Allowed is allowed unconditionally.
	Conditions json.RawMessage `json:"conditions,omitempty"`
}

// CapabilityPolicy describes the capability surface the sandboxed process
// should retain across exec.
type CapabilityPolicy struct {
	// DropAll, when true, means the ambient set starts from nothing;
	// when false, Keep is added to whatever ambient capabilities the
	// process already carries.
	DropAll bool `json:"drop_all"`

	// Keep lists capability names (e.g. "CAP_NET_BIND_SERVICE") to raise
	// into the ambient set. Unknown names are warned and skipped, never
	// a hard error.
	Keep []string `json:"keep,omitempty"`
}

// BindMount describes one bind-mount to perform inside the sandbox's mount
// namespace, supplied at the command line rather than in the profile file.
type BindMount struct {
	// Source is the absolute host filesystem path being mounted in.
	Source string

	// Target is the absolute path, inside the new mount namespace, where
	// Source becomes visible. Created if it does not already exist.
	Target string

	// ReadOnly marks the mount for a hardening remount (ro, nosuid, nodev)
	// after the initial bind mount succeeds.
	ReadOnly bool

	// Recursive controls whether the bind mount propagates submounts of
	// Source. Defaults to true; there is currently no CLI grammar to
	// disable it, matching the spec's stated default.
	Recursive bool
}
