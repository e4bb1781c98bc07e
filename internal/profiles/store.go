// Package profiles persists the short list of named remote-connection
// profiles shown in the connect dialog. Plain CRUD over SQLite; the only
// storage-level rule is uniqueness of the identifier and name. The
// filesystem driver neither reads nor writes this store.
package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Profile is one saved remote-connection record.
type Profile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	LastUsed time.Time `json:"last_used"`
}

// Store is a SQLite-backed profile store.
type Store struct {
	db *sql.DB
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS profiles (
	id        TEXT PRIMARY KEY,
	name      TEXT UNIQUE NOT NULL,
	host      TEXT NOT NULL,
	port      INTEGER NOT NULL DEFAULT 22,
	username  TEXT NOT NULL DEFAULT '',
	password  TEXT NOT NULL DEFAULT '',
	last_used INTEGER NOT NULL DEFAULT 0
)`

// Open opens (creating if needed) the store at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("profiles: open: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("profiles: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadAll returns every profile, most recently used first.
func (s *Store) LoadAll(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, host, port, username, password, last_used
		 FROM profiles ORDER BY last_used DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("profiles: load: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		var lastUsed int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Host, &p.Port, &p.Username, &p.Password, &lastUsed); err != nil {
			return nil, fmt.Errorf("profiles: scan: %w", err)
		}
		if lastUsed > 0 {
			p.LastUsed = time.Unix(lastUsed, 0)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert inserts the profile or replaces the record with the same ID. An
// empty ID is assigned a fresh one, returned via the result.
func (s *Store) Upsert(ctx context.Context, p Profile) (Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var lastUsed int64
	if !p.LastUsed.IsZero() {
		lastUsed = p.LastUsed.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, host, port, username, password, last_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			host = excluded.host,
			port = excluded.port,
			username = excluded.username,
			password = excluded.password,
			last_used = excluded.last_used`,
		p.ID, p.Name, p.Host, p.Port, p.Username, p.Password, lastUsed)
	if err != nil {
		return Profile{}, fmt.Errorf("profiles: upsert: %w", err)
	}
	return p, nil
}

// Delete removes the profile with the given ID; deleting an unknown ID is
// a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("profiles: delete: %w", err)
	}
	return nil
}
