package profile

import (
	"os"
	"path/filepath"
	"testing"

	serrors "seccage/errors"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
}

func TestLoad_Minimal(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "minimal", `{
		"profile_name": "minimal",
		"syscalls": {
			"default_action": "kill",
			"allowed": ["read", "write", "execve", "exit", "exit", "exit_group"]
		}
	}`)

	p, err := Load("minimal", []string{dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "minimal" {
		t.Errorf("Name = %q, want minimal", p.Name)
	}
	if p.Syscalls.DefaultAction != ActionKill {
		t.Errorf("DefaultAction = %q, want kill", p.Syscalls.DefaultAction)
	}
	if len(p.Syscalls.Allowed) != 5 {
		t.Errorf("Allowed = %v, want 5 deduplicated entries", p.Syscalls.Allowed)
	}
}

func TestLoad_CommentTolerant(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "commented", `{
		// why we allow write: stdout output
		"profile_name": "commented",
		"syscalls": {
			"default_action": "kill",
			"allowed": ["write", "exit_group"] /* minimum for echo */
		}
	}`)

	p, err := Load("commented", []string{dir})
	if err != nil {
		t.Fatalf("Load with comments: %v", err)
	}
	if p.Name != "commented" {
		t.Errorf("Name = %q, want commented", p.Name)
	}
}

func TestLoad_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Load("nope", []string{dir})
	if !serrors.IsKind(err, serrors.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "bad", `{not json`)

	_, err := Load("bad", []string{dir})
	if !serrors.IsKind(err, serrors.ErrProfileMalformed) {
		t.Errorf("expected ErrProfileMalformed, got %v", err)
	}
}

func TestLoad_ErrnoWithoutValue(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "badaction", `{
		"profile_name": "badaction",
		"syscalls": {"default_action": "errno", "allowed": ["write"]}
	}`)

	_, err := Load("badaction", []string{dir})
	if !serrors.IsKind(err, serrors.ErrProfileInvalid) {
		t.Errorf("expected ErrProfileInvalid, got %v", err)
	}
}

func TestLoad_ErrnoOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "badrange", `{
		"profile_name": "badrange",
		"syscalls": {"default_action": "errno", "errno_value": 9000, "allowed": ["write"]}
	}`)

	_, err := Load("badrange", []string{dir})
	if !serrors.IsKind(err, serrors.ErrProfileInvalid) {
		t.Errorf("expected ErrProfileInvalid, got %v", err)
	}
}

func TestLoad_AllowedBlockedOverlap(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "overlap", `{
		"profile_name": "overlap",
		"syscalls": {
			"default_action": "kill",
			"allowed": ["write"],
			"blocked": ["write"]
		}
	}`)

	_, err := Load("overlap", []string{dir})
	if !serrors.IsKind(err, serrors.ErrProfileInvalid) {
		t.Errorf("expected ErrProfileInvalid, got %v", err)
	}
}

func TestLoad_FirstHitWins(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeProfile(t, dirA, "dup", `{"profile_name": "from-a", "syscalls": {"default_action": "kill"}}`)
	writeProfile(t, dirB, "dup", `{"profile_name": "from-b", "syscalls": {"default_action": "kill"}}`)

	p, err := Load("dup", []string{dirA, dirB})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "from-a" {
		t.Errorf("Name = %q, want from-a (first search dir wins)", p.Name)
	}
}

func TestSearchPath_EnvOverride(t *testing.T) {
	t.Setenv("SANDBOX_PROFILE_PATH", "/tmp/a:/tmp/b")
	sp := SearchPath()
	if sp[0] != "/tmp/a" || sp[1] != "/tmp/b" {
		t.Errorf("SearchPath() = %v, want env dirs first", sp)
	}
	if len(sp) != 2+len(DefaultSearchPath) {
		t.Errorf("SearchPath() length = %d, want %d", len(sp), 2+len(DefaultSearchPath))
	}
}
