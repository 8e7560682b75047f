package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	serrors "seccage/errors"
)

// DefaultSearchPath is the compiled-in, ordered list of directories
// consulted when resolving a profile name to a file. The first hit wins.
var DefaultSearchPath = []string{
	"/etc/seccage/profiles",
	"./profiles",
	"/usr/local/share/seccage/profiles",
}

// searchPathEnv names the environment variable that, when set, is
// consulted ahead of DefaultSearchPath.
const searchPathEnv = "SANDBOX_PROFILE_PATH"

// SearchPath returns the effective, ordered profile search path: any
// directories named in SANDBOX_PROFILE_PATH (colon-separated, like PATH),
// followed by DefaultSearchPath.
func SearchPath() []string {
	var dirs []string
	if v := os.Getenv(searchPathEnv); v != "" {
		dirs = append(dirs, filepath.SplitList(v)...)
	}
	return append(dirs, DefaultSearchPath...)
}

// rawProfile mirrors the on-disk JSON schema exactly; Load decodes into
// this shape before producing the validated Profile.
type rawProfile struct {
	Name         string            `json:"profile_name"`
	Description  string            `json:"description"`
	Version      string            `json:"version"`
	Syscalls     rawSyscalls       `json:"syscalls"`
	Capabilities *CapabilityPolicy `json:"capabilities"`
}

type rawSyscalls struct {
	DefaultAction DefaultAction   `json:"default_action"`
	ErrnoValue    *int            `json:"errno_value"`
	Allowed       []string        `json:"allowed"`
	Blocked       []string        `json:"blocked"`
	Conditions    json.RawMessage `json:"conditions"`
}

// Load resolves name to a file under searchPath, decodes it (tolerating
// // and /* */ comments), and validates it. searchPath is searched in
// order; the first file named "<dir>/<name>.json" that exists wins.
func Load(name string, searchPath []string) (*Profile, error) {
	path, err := resolve(name, searchPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.WrapWithProfile(err, serrors.ErrProfileNotFound, "load profile", name)
	}

	var raw rawProfile
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, serrors.WrapWithProfile(err, serrors.ErrProfileMalformed, "parse profile", name)
	}

	p := &Profile{
		Name:        raw.Name,
		Description: raw.Description,
		Version:     raw.Version,
		Syscalls: SyscallPolicy{
			DefaultAction: raw.Syscalls.DefaultAction,
			ErrnoValue:    raw.Syscalls.ErrnoValue,
			Allowed:       coalesce(raw.Syscalls.Allowed),
			Blocked:       coalesce(raw.Syscalls.Blocked),
			Conditions:    raw.Syscalls.Conditions,
		},
		Capabilities: raw.Capabilities,
	}

	if err := validate(p); err != nil {
		return nil, serrors.WrapWithProfile(err, serrors.ErrProfileInvalid, "validate profile", name)
	}

	return p, nil
}

// resolve searches searchPath in order for "<dir>/<name>.json".
func resolve(name string, searchPath []string) (string, error) {
	for _, dir := range searchPath {
		candidate := filepath.Join(dir, name+".json")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", serrors.WrapWithProfile(nil, serrors.ErrProfileNotFound, "resolve profile",
		fmt.Sprintf("%s (searched %s)", name, strings.Join(searchPath, ", ")))
}

// coalesce deduplicates a string slice, keeping the first occurrence of
// each name in its original order, per the spec's "duplicates are
// tolerated but coalesced to unique sets" rule.
func coalesce(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// validate enforces the invariants from the data model: default_action's
// errno requirement and the allowed/blocked disjointness rule. The
// capability section is not checked here; a wrongly typed drop_all or
// keep already fails JSON decoding in Load.
func validate(p *Profile) error {
	switch p.Syscalls.DefaultAction {
	case ActionKill, ActionErrno, ActionAllow:
	default:
		return fmt.Errorf("unknown default_action %q", p.Syscalls.DefaultAction)
	}

	if p.Syscalls.DefaultAction == ActionErrno {
		if p.Syscalls.ErrnoValue == nil {
			return fmt.Errorf("default_action is errno but errno_value is absent")
		}
		if *p.Syscalls.ErrnoValue < 1 || *p.Syscalls.ErrnoValue > 4095 {
			return fmt.Errorf("errno_value %d out of range 1..4095", *p.Syscalls.ErrnoValue)
		}
	}

	blocked := make(map[string]struct{}, len(p.Syscalls.Blocked))
	for _, b := range p.Syscalls.Blocked {
		blocked[b] = struct{}{}
	}
	for _, a := range p.Syscalls.Allowed {
		if _, ok := blocked[a]; ok {
			return fmt.Errorf("syscall %q present in both allowed and blocked", a)
		}
	}

	return nil
}
