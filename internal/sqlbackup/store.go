// Package sqlbackup is an optional durable backend for the Backup Manager:
// a flat, keyed blob store instead of a filesystem tree, since nothing in
// the merge core needs directory listing over backups.
package sqlbackup

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Record is one stored backup snapshot.
type Record struct {
	Path    string `db:"path"`
	Content []byte `db:"content"`
	Flags   string `db:"flags"`
}

// Store persists backup snapshots in a single MySQL table keyed by path,
// for callers that want merge backups to survive beyond the working tree
// (e.g. a server-side merge service with no local disk per request).
type Store struct {
	db    *sqlx.DB
	table string
}

// Open connects db under the "mysql" driver and ensures table exists.
func Open(db *sql.DB, table string) (*Store, error) {
	x := sqlx.NewDb(db, "mysql")

	_, err := x.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			path VARCHAR(1024) NOT NULL PRIMARY KEY,
			flags VARCHAR(16),
			content LONGBLOB)`, table))
	if err != nil {
		return nil, err
	}

	return &Store{db: x, table: table}, nil
}

// Put stores or replaces the backup for path.
func (s *Store) Put(path string, content []byte, flags string) error {
	_, err := s.db.Exec(
		fmt.Sprintf("REPLACE INTO %s (path, flags, content) VALUES (?, ?, ?)", s.table),
		path, flags, content)

	return err
}

// Get retrieves the backup for path. ok is false if no backup is stored.
func (s *Store) Get(path string) (content []byte, flags string, ok bool, err error) {
	rec := Record{}

	err = s.db.Get(&rec, fmt.Sprintf("SELECT * FROM %s WHERE path = ?", s.table), path)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", false, nil
		}

		return nil, "", false, err
	}

	return rec.Content, rec.Flags, true, nil
}

// Delete removes the backup for path, if any.
func (s *Store) Delete(path string) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE path = ?", s.table), path)
	return err
}
