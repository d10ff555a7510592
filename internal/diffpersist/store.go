// Package diffpersist persists the last published diff.LineDiffs
// snapshot for a document path. `glint watch` saves one on every file
// change and loads it back at startup, where it is only logged: the
// diff gutter is drawn from the live worker's snapshot, not from this
// store.
//
// Read-through behavior (read the persisted snapshot, fall back to
// recompute) lives at the call-site level: LoadSnapshot returns
// (nil, false) on a miss and leaves recomputation to the caller's
// diff.Worker.
package diffpersist

import (
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS diff_snapshots (
	doc_path TEXT NOT NULL,
	line     INTEGER NOT NULL,
	op       INTEGER NOT NULL,
	PRIMARY KEY (doc_path, line)
);
`

// emptySnapshotLine is a sentinel row inserted when a document's snapshot
// has zero changed lines, so "no snapshot was ever saved" (LoadSnapshot
// returns ok == false) stays distinguishable from "a snapshot was saved
// and the document had no changes" (ok == true, an empty LineDiffs).
const emptySnapshotLine = -1

// Store persists line-diff snapshots in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and
// ensures the diff_snapshots table exists. path may be ":memory:" for
// tests or ephemeral use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening diff snapshot database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating diff_snapshots schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// SaveSnapshot replaces the persisted snapshot for docPath with diffs'
// current line ops, inside one transaction so a reader never observes a
// partially-replaced snapshot.
func (s *Store) SaveSnapshot(docPath string, diffs *diff.LineDiffs) error {
	ops := diffs.Ops()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM diff_snapshots WHERE doc_path = ?`, docPath); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO diff_snapshots (doc_path, line, op) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	if len(ops) == 0 {
		if _, err := stmt.Exec(docPath, emptySnapshotLine, 0); err != nil {
			return fmt.Errorf("inserting empty-snapshot marker: %w", err)
		}
	}
	for line, op := range ops {
		if _, err := stmt.Exec(docPath, line, int(op)); err != nil {
			return fmt.Errorf("inserting snapshot row for line %d: %w", line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot save transaction: %w", err)
	}

	log.Debug(log.CatCache, "saved diff snapshot", "path", docPath, "lines", len(ops))
	return nil
}

// LoadSnapshot reads back the persisted snapshot for docPath. ok is
// false if no snapshot has ever been saved for that path, in which case
// the caller should fall back to a live diff.Worker computation.
func (s *Store) LoadSnapshot(docPath string) (snapshot *diff.LineDiffs, ok bool, err error) {
	rows, err := s.db.Query(`SELECT line, op FROM diff_snapshots WHERE doc_path = ?`, docPath)
	if err != nil {
		return nil, false, fmt.Errorf("querying diff snapshot: %w", err)
	}
	defer rows.Close()

	ops := make(map[int]diff.LineOp)
	found := false
	for rows.Next() {
		var line int
		var op int
		if err := rows.Scan(&line, &op); err != nil {
			return nil, false, fmt.Errorf("scanning diff snapshot row: %w", err)
		}
		found = true
		if line == emptySnapshotLine {
			continue
		}
		ops[line] = diff.LineOp(op)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("reading diff snapshot rows: %w", err)
	}

	if !found {
		return nil, false, nil
	}
	log.Debug(log.CatCache, "loaded diff snapshot", "path", docPath, "lines", len(ops))
	return diff.FromOps(ops), true, nil
}

// DeleteSnapshot removes any persisted snapshot for docPath (e.g. when
// the document is closed).
func (s *Store) DeleteSnapshot(docPath string) error {
	_, err := s.db.Exec(`DELETE FROM diff_snapshots WHERE doc_path = ?`, docPath)
	if err != nil {
		return fmt.Errorf("deleting diff snapshot: %w", err)
	}
	return nil
}
