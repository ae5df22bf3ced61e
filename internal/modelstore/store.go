// Package modelstore exports a loaded model into SQLite for offline
// inspection (ad-hoc SQL over big transition tables). The in-memory
// Model stays the source of truth; this is a one-way snapshot.
package modelstore

// #region imports
import (
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// #endregion imports

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS mdp_transitions (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	src     INTEGER NOT NULL,
	action  INTEGER NOT NULL,
	dest    INTEGER NOT NULL,
	prob    REAL NOT NULL,
	UNIQUE(src, action, dest)
);
CREATE INDEX IF NOT EXISTS idx_transitions_src ON mdp_transitions(src, action);

CREATE TABLE IF NOT EXISTS mdp_rewards (
	src     INTEGER NOT NULL,
	action  INTEGER NOT NULL,
	dest    INTEGER NOT NULL,
	reward  REAL NOT NULL,
	UNIQUE(src, action, dest)
);

CREATE TABLE IF NOT EXISTS mdp_meta (
	key     TEXT PRIMARY KEY,
	value   TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store manages the mdp_* tables.
type Store struct {
	db *sql.DB
}

// NewStore creates tables on an existing handle and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("modelstore schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens (or creates) a SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close shuts down the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region export

// Export snapshots m into the database in one transaction. Outcome
// insertion order is preserved through the autoincrement id, so reading
// back keeps the file order that sampling depends on.
func (s *Store) Export(m *explicit.Model) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("export begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM mdp_transitions`,
		`DELETE FROM mdp_rewards`,
		`DELETE FROM mdp_meta`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("export clear: %w", err)
		}
	}

	// Iterate states in sorted order so the snapshot is stable run to run.
	for _, src := range m.States {
		for _, action := range m.Actions(src) {
			outcomes, _ := m.Outcomes(src, action)
			for _, o := range outcomes {
				if _, err := tx.Exec(
					`INSERT INTO mdp_transitions (src, action, dest, prob) VALUES (?, ?, ?, ?)`,
					src, action, o.Dest, o.Prob,
				); err != nil {
					return fmt.Errorf("export transition (%d,%d,%d): %w", src, action, o.Dest, err)
				}
			}
		}
	}

	for key, reward := range m.Rewards {
		if _, err := tx.Exec(
			`INSERT INTO mdp_rewards (src, action, dest, reward) VALUES (?, ?, ?, ?)`,
			key.State, key.Action, key.Dest, reward,
		); err != nil {
			return fmt.Errorf("export reward (%d,%d,%d): %w", key.State, key.Action, key.Dest, err)
		}
	}

	meta := map[string]string{
		"initial_state": strconv.Itoa(m.InitialState),
		"num_states":    strconv.Itoa(len(m.States)),
	}
	for key, value := range meta {
		if _, err := tx.Exec(`INSERT INTO mdp_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("export meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export commit: %w", err)
	}
	return nil
}

// #endregion export

// #region queries

// Outcomes reads back the outcome distribution of (src, action) in
// insertion order.
func (s *Store) Outcomes(src, action int) ([]explicit.Outcome, error) {
	rows, err := s.db.Query(
		`SELECT dest, prob FROM mdp_transitions
		 WHERE src = ? AND action = ?
		 ORDER BY id ASC`,
		src, action,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []explicit.Outcome
	for rows.Next() {
		var o explicit.Outcome
		if err := rows.Scan(&o.Dest, &o.Prob); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// CountTransitions returns the stored transition-record count.
func (s *Store) CountTransitions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM mdp_transitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transitions: %w", err)
	}
	return n, nil
}

// InitialState returns the snapshotted initial state.
func (s *Store) InitialState() (int, error) {
	var value string
	if err := s.db.QueryRow(`SELECT value FROM mdp_meta WHERE key = 'initial_state'`).Scan(&value); err != nil {
		return 0, fmt.Errorf("initial state: %w", err)
	}
	state, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("initial state value %q: %w", value, err)
	}
	return state, nil
}

// #endregion queries
