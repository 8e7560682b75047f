package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	serrors "seccage/errors"
)

// ParseBindMountSpecs parses every --bind flag value into a flat list of
// literal BindMount triples. Each spec has the grammar
// "<source>:<target>[:ro]"; both source and target must be absolute.
//
// As a convenience extension, a source containing glob metacharacters
// (*, ?, [) is expanded against the host filesystem before validation:
// each match becomes its own BindMount, mounted at the identical path
// inside the sandbox (so "/home/*/.cache:ro" bind-mounts every matching
// host directory onto itself in the new namespace). For a glob source the
// target part is ignored, and a spec of the form "<glob>:ro" marks every
// match read-only. This is purely a pre-processing step; the orchestrator
// only ever sees literal triples.
func ParseBindMountSpecs(specs []string) ([]BindMount, error) {
	var out []BindMount
	for _, spec := range specs {
		mounts, err := parseOne(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, mounts...)
	}
	return out, nil
}

func parseOne(spec string) ([]BindMount, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, serrors.WrapWithDetail(nil, serrors.ErrInvalidBindMount, "parse bind spec",
			fmt.Sprintf("%q: expected source:target[:ro]", spec))
	}

	source, target := parts[0], parts[1]
	readonly := false
	if len(parts) == 3 {
		if parts[2] != "ro" {
			return nil, serrors.WrapWithDetail(nil, serrors.ErrInvalidBindMount, "parse bind spec",
				fmt.Sprintf("%q: unknown modifier %q", spec, parts[2]))
		}
		readonly = true
	}

	if !isGlob(source) {
		if err := validateAbsolute(source, target); err != nil {
			return nil, err
		}
		return []BindMount{{Source: source, Target: target, ReadOnly: readonly, Recursive: true}}, nil
	}

	if len(parts) == 2 && target == "ro" {
		readonly = true
	}

	matches, err := doublestar.FilepathGlob(source)
	if err != nil {
		return nil, serrors.WrapWithDetail(err, serrors.ErrInvalidBindMount, "expand bind glob", spec)
	}

	out := make([]BindMount, 0, len(matches))
	for _, m := range matches {
		if err := validateAbsolute(m, m); err != nil {
			return nil, err
		}
		out = append(out, BindMount{Source: m, Target: m, ReadOnly: readonly, Recursive: true})
	}
	return out, nil
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

func validateAbsolute(source, target string) error {
	if !filepath.IsAbs(source) || !filepath.IsAbs(target) {
		return serrors.WrapWithDetail(nil, serrors.ErrInvalidBindMount, "validate bind spec",
			fmt.Sprintf("source %q and target %q must both be absolute", source, target))
	}
	return nil
}
