// Package orchestrator assembles a sandbox: it loads a profile, compiles
// its syscall policy to BPF, re-execs the launcher binary across a
// namespace boundary, and drives the child through bind mounts,
// capability transition, and filter installation before it execs the
// target program.
package orchestrator

// Config describes one sandbox invocation, built from command-line flags
// by the cmd package.
type Config struct {
	// ProfileName is the profile to load, resolved against SearchPath.
	ProfileName string

	// SearchPath overrides the profile loader's default search order.
	// Nil means use profile.SearchPath().
	SearchPath []string

	// BindMountSpecs are the raw "source:target[:ro]" strings from
	// repeated --bind flags, parsed by profile.ParseBindMountSpecs.
	BindMountSpecs []string

	// Args is the target program and its arguments, taken verbatim from
	// after the "--" separator.
	Args []string
}

const (
	// envProfile carries the resolved profile name to the re-exec'd child.
	envProfile = "SECCAGE_PROFILE"
	// envSearchPath carries the profile search path, joined with the
	// platform's PATH list separator.
	envSearchPath = "SECCAGE_SEARCH_PATH"
	// envBindMounts carries the bind-mount specs, one per line.
	envBindMounts = "SECCAGE_BIND_MOUNTS"
)
