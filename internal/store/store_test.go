package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate; a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestStateRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.SetState(KeyCredential, "tok-123"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetState(KeyCredential)
	if err != nil {
		t.Fatal(err)
	}
	if got != "tok-123" {
		t.Errorf("GetState = %q, want tok-123", got)
	}
}

func TestStateOverwrite(t *testing.T) {
	db := testDB(t)

	if err := db.SetState(KeyTheme, "light"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetState(KeyTheme, "dark"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetState(KeyTheme)
	if err != nil {
		t.Fatal(err)
	}
	if got != "dark" {
		t.Errorf("GetState = %q, want dark (last write wins)", got)
	}
}

func TestStateMissingKey(t *testing.T) {
	db := testDB(t)

	_, err := db.GetState("never_set")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetState error = %v, want ErrNotFound", err)
	}
}

func TestDeleteState(t *testing.T) {
	db := testDB(t)

	if err := db.SetState(KeyUsername, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteState(KeyUsername); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetState(KeyUsername); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetState after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is fine.
	if err := db.DeleteState(KeyUsername); err != nil {
		t.Errorf("second DeleteState error = %v", err)
	}
}
