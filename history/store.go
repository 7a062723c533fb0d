// Package history records each collection cycle's overlay items into a
// sqlite database, so the dashboard can show what passed through the zones
// after the fact.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ekstremedia/pi-overlay-data/overlay"
)

// Sighting is one recorded overlay item.
type Sighting struct {
	CycleID   string          `json:"cycle_id"`
	Provider  string          `json:"provider"`
	Ref       string          `json:"ref"`
	Line      string          `json:"line"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store wraps the sqlite database. All writes happen from the single
// service loop; reads come from the web handlers.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id TEXT PRIMARY KEY,
	provider TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS sightings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	ref TEXT NOT NULL,
	line TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	FOREIGN KEY(cycle_id) REFERENCES cycles(id)
);
CREATE INDEX IF NOT EXISTS idx_sightings_provider_time ON sightings(provider, created_at);
`

// RecordCycle stores one provider cycle and its items.
func (s *Store) RecordCycle(data overlay.Data) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"INSERT INTO cycles (id, provider, item_count, created_at) VALUES (?, ?, ?, ?)",
		data.CycleID, data.Provider, data.Count, data.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, item := range data.Items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", item.Ref(), err)
		}
		if _, err := tx.Exec(
			"INSERT INTO sightings (cycle_id, provider, ref, line, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			data.CycleID, data.Provider, item.Ref(), item.OverlayLine(), string(payload), data.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert sighting %s: %w", item.Ref(), err)
		}
	}
	return tx.Commit()
}

// RecentSightings returns the sightings for a provider since the given
// time, newest first.
func (s *Store) RecentSightings(provider string, since time.Time) ([]Sighting, error) {
	rows, err := s.db.Query(
		"SELECT cycle_id, provider, ref, line, payload, created_at FROM sightings WHERE provider = ? AND created_at >= ? ORDER BY created_at DESC, ref ASC",
		provider, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query sightings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Sighting
	for rows.Next() {
		var sighting Sighting
		var payload string
		if err := rows.Scan(&sighting.CycleID, &sighting.Provider, &sighting.Ref, &sighting.Line, &payload, &sighting.CreatedAt); err != nil {
			return nil, err
		}
		sighting.Payload = json.RawMessage(payload)
		out = append(out, sighting)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
