package sqlbackup

import (
	"database/sql"
	"os"
	"testing"
)

// TestStoreCRUDRoundTrip exercises Open/Put/Get/Delete against a live MySQL
// instance, the same way the original filesystem-backed storage tests did.
// It is skipped unless FILEMERGE_MYSQL_DSN is set, since this package has no
// fake/mock driver and a real server is the only thing that proves the
// REPLACE INTO / SELECT ... WHERE path = ? statements are valid SQL.
func TestStoreCRUDRoundTrip(t *testing.T) {
	dsn := os.Getenv("FILEMERGE_MYSQL_DSN")
	if dsn == "" {
		t.Skip("FILEMERGE_MYSQL_DSN not set, skipping live MySQL round trip")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	store, err := Open(db, "filemerge_backup_test")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Put("a.txt.orig", []byte("content"), "x"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	content, flags, ok, err := store.Get("a.txt.orig")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !ok || string(content) != "content" || flags != "x" {
		t.Errorf("Get() = (%q, %q, %v), want (\"content\", \"x\", true)", content, flags, ok)
	}

	if err := store.Delete("a.txt.orig"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, _, ok, err := store.Get("a.txt.orig"); err != nil || ok {
		t.Errorf("Get() after Delete = (ok=%v, err=%v), want (false, nil)", ok, err)
	}
}
