// Package journal persists a record of every command sent to a decoder,
// backed by a local SQLite database. It is purely an audit trail: nothing
// in pkgs/rx, pkgs/tx or pkgs/zusi depends on it.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one logged command outcome. SessionID is an opaque string so the
// journal doesn't need to agree with the caller on an ID scheme - the
// programmer layer stamps it with an xid.ID string.
type Entry struct {
	ID        uuid.UUID
	SessionID string
	Command   string
	Addr      uint32
	Value     uint8
	Outcome   string
	At        time.Time
}

// Journal wraps a SQLite-backed command log.
type Journal struct {
	db *sql.DB
}

// Open creates (if needed) and opens the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	command    TEXT NOT NULL,
	addr       INTEGER NOT NULL,
	value      INTEGER NOT NULL,
	outcome    TEXT NOT NULL,
	at         DATETIME NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error { return j.db.Close() }

// Record appends one entry, stamping a fresh ID if e.ID is the zero UUID.
func (j *Journal) Record(e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := j.db.Exec(
		`INSERT INTO entries (id, session_id, command, addr, value, outcome, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.SessionID, e.Command, e.Addr, e.Value, e.Outcome, e.At,
	)
	if err != nil {
		return fmt.Errorf("journal: record entry: %w", err)
	}
	return nil
}

// ForSession returns every entry recorded under sessionID, oldest first.
func (j *Journal) ForSession(sessionID string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, session_id, command, addr, value, outcome, at FROM entries WHERE session_id = ? ORDER BY at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query session: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var id string
		if err := rows.Scan(&id, &e.SessionID, &e.Command, &e.Addr, &e.Value, &e.Outcome, &e.At); err != nil {
			return nil, fmt.Errorf("journal: scan row: %w", err)
		}
		e.ID = uuid.MustParse(id)
		out = append(out, e)
	}
	return out, rows.Err()
}
