package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmwallaa.db")
	s, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if _, err := s.db.Exec("UPDATE schema_version SET version = ?", schemaVersion+1); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	if isSQLiteBusy(nil) {
		t.Fatal("nil error reported busy")
	}
	if !isSQLiteBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("busy message not detected")
	}
	if isSQLiteBusy(errors.New("constraint failed")) {
		t.Fatal("unrelated error reported busy")
	}
}
