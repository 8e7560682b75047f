package mount

import (
	"os"
	"path/filepath"
	"testing"

	serrors "seccage/errors"
	"seccage/profile"
)

func TestOne_SourceMissing(t *testing.T) {
	dir := t.TempDir()
	m := profile.BindMount{
		Source: filepath.Join(dir, "does-not-exist"),
		Target: filepath.Join(dir, "target"),
	}
	err := one(m)
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
	if !serrors.IsKind(err, serrors.ErrSourceMissing) {
		t.Errorf("IsKind(ErrSourceMissing) = false, err = %v", err)
	}
}

func TestEnsureTarget_FileSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(src, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	target := filepath.Join(dir, "nested", "file.txt")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := ensureTarget(profile.BindMount{Source: src, Target: target}); err != nil {
		t.Fatalf("ensureTarget: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat(target): %v", err)
	}
	if info.IsDir() {
		t.Errorf("expected target to be a regular file")
	}
}

func TestEnsureTarget_DirSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "srcdir")
	if err := os.Mkdir(src, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	target := filepath.Join(dir, "targetdir")

	if err := ensureTarget(profile.BindMount{Source: src, Target: target}); err != nil {
		t.Fatalf("ensureTarget: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat(target): %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected target to be a directory")
	}
}

func TestApply_EmptyList(t *testing.T) {
	if err := Apply(nil); err != nil {
		t.Errorf("Apply(nil) = %v, want nil", err)
	}
}
