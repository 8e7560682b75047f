package profile

import (
	"testing"

	serrors "seccage/errors"
)

func TestParseBindMountSpecs_Basic(t *testing.T) {
	mounts, err := ParseBindMountSpecs([]string{"/tmp/input:/sandbox/data:ro"})
	if err != nil {
		t.Fatalf("ParseBindMountSpecs: %v", err)
	}
	if len(mounts) != 1 {
		t.Fatalf("got %d mounts, want 1", len(mounts))
	}
	m := mounts[0]
	if m.Source != "/tmp/input" || m.Target != "/sandbox/data" || !m.ReadOnly || !m.Recursive {
		t.Errorf("unexpected mount: %+v", m)
	}
}

func TestParseBindMountSpecs_NotReadOnly(t *testing.T) {
	mounts, err := ParseBindMountSpecs([]string{"/a:/b"})
	if err != nil {
		t.Fatalf("ParseBindMountSpecs: %v", err)
	}
	if mounts[0].ReadOnly {
		t.Errorf("expected ReadOnly=false")
	}
}

func TestParseBindMountSpecs_RelativeRejected(t *testing.T) {
	_, err := ParseBindMountSpecs([]string{"rel/path:/abs/path"})
	if !serrors.IsKind(err, serrors.ErrInvalidBindMount) {
		t.Errorf("expected ErrInvalidBindMount, got %v", err)
	}
}

func TestParseBindMountSpecs_BadModifier(t *testing.T) {
	_, err := ParseBindMountSpecs([]string{"/a:/b:rw"})
	if !serrors.IsKind(err, serrors.ErrInvalidBindMount) {
		t.Errorf("expected ErrInvalidBindMount, got %v", err)
	}
}

func TestParseBindMountSpecs_WrongArity(t *testing.T) {
	_, err := ParseBindMountSpecs([]string{"/a"})
	if !serrors.IsKind(err, serrors.ErrInvalidBindMount) {
		t.Errorf("expected ErrInvalidBindMount, got %v", err)
	}
}

func TestParseBindMountSpecs_Empty(t *testing.T) {
	mounts, err := ParseBindMountSpecs(nil)
	if err != nil {
		t.Fatalf("ParseBindMountSpecs(nil): %v", err)
	}
	if len(mounts) != 0 {
		t.Errorf("expected no mounts, got %v", mounts)
	}
}
