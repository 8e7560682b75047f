// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Profile errors.
var (
	// ErrProfileNotFoundSentinel indicates no search directory held the named profile.
	ErrProfileNotFoundSentinel = &SandboxError{
		Kind:   ErrProfileNotFound,
		Detail: "profile not found in search path",
	}

	// ErrProfileMalformedSentinel indicates the profile JSON failed to parse.
	ErrProfileMalformedSentinel = &SandboxError{
		Kind:   ErrProfileMalformed,
		Detail: "profile JSON is malformed",
	}

	// ErrProfileInvalidSentinel indicates the profile violated a validation rule.
	ErrProfileInvalidSentinel = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "profile failed validation",
	}

	// ErrMissingErrnoValue indicates default_action=errno without an errno_value.
	ErrMissingErrnoValue = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "errno_value required when default_action is errno",
	}

	// ErrErrnoOutOfRange indicates errno_value fell outside 1..4095.
	ErrErrnoOutOfRange = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "errno_value out of range (1..4095)",
	}

	// ErrAllowedBlockedOverlap indicates a syscall name appeared in both sets.
	ErrAllowedBlockedOverlap = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "syscall name present in both allowed and blocked",
	}
)

// Syscall table / BPF compiler errors.
var (
	// ErrUnsupportedArch indicates the host architecture has no syscall table.
	ErrUnsupportedArch = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "unsupported architecture",
	}

	// ErrProgramTooLarge indicates the compiled program exceeds the 8-bit jump bound.
	ErrProgramTooLarge = &SandboxError{
		Kind:   ErrProfileInvalid,
		Detail: "compiled program exceeds maximum forward branch offset",
	}
)

// Bind-mount errors.
var (
	// ErrRelativeBindPath indicates a bind-mount path was not absolute.
	ErrRelativeBindPath = &SandboxError{
		Kind:   ErrInvalidBindMount,
		Detail: "bind mount paths must be absolute",
	}

	// ErrBindSourceMissing indicates the bind-mount source did not exist.
	ErrBindSourceMissing = &SandboxError{
		Kind:   ErrSourceMissing,
		Detail: "bind mount source does not exist",
	}
)

// Capability errors.
var (
	// ErrCapabilitySetup indicates a capability-set syscall failed.
	ErrCapabilitySetup = &SandboxError{
		Kind:   ErrCapabilitySetupFailed,
		Detail: "failed to apply capability policy",
	}
)

// Orchestrator errors.
var (
	// ErrFork indicates the orchestrator could not start the re-exec'd child.
	ErrFork = &SandboxError{
		Kind:   ErrForkFailed,
		Detail: "failed to fork sandbox child",
	}

	// ErrSeccompInstall indicates the kernel rejected the BPF program.
	ErrSeccompInstall = &SandboxError{
		Kind:   ErrSeccompInstallFailed,
		Detail: "kernel rejected seccomp filter",
	}

	// ErrPolicyViolation indicates the child was killed by SIGSYS.
	ErrPolicyViolation = &SandboxError{
		Kind:   ErrSeccompViolation,
		Detail: "sandboxed program attempted a disallowed syscall",
	}
)
