// Package trajectory persists rollout runs in SQLite so experiments can
// be inspected and compared after the fact. The environment itself never
// touches this store; recording is opt-in from the rollout harness.
package trajectory

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #endregion imports

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS rollout_runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	seed        INTEGER NOT NULL,
	policy      TEXT NOT NULL,
	episodes    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rollout_steps (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	episode     INTEGER NOT NULL,
	step_idx    INTEGER NOT NULL,
	state       INTEGER NOT NULL,
	action      INTEGER NOT NULL,
	next_state  INTEGER NOT NULL,
	reward      REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES rollout_runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_steps_run ON rollout_steps(run_id, episode, step_idx);
`

// #endregion schema

// #region types

// Run is one recorded rollout invocation.
type Run struct {
	RunID     string
	CreatedAt time.Time
	Seed      int64
	Policy    string
	Episodes  int
}

// Step is one recorded environment transition.
type Step struct {
	RunID     string
	Episode   int
	Index     int
	State     int
	Action    int
	NextState int
	Reward    float64
}

// Store manages the rollout_runs and rollout_steps tables.
type Store struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewStore creates tables on an existing handle and returns a Store.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("trajectory schema: %w", err)
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

// #endregion constructor

// #region begin-run

// BeginRun registers a new run and returns its generated id.
func (s *Store) BeginRun(seed int64, policy string, episodes int) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO rollout_runs (run_id, created_at, seed, policy, episodes)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, now, seed, policy, episodes,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return runID, nil
}

// #endregion begin-run

// #region record-step

// RecordStep appends one transition to a run.
func (s *Store) RecordStep(step Step) error {
	_, err := s.db.Exec(
		`INSERT INTO rollout_steps (run_id, episode, step_idx, state, action, next_state, reward)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		step.RunID, step.Episode, step.Index, step.State, step.Action, step.NextState, step.Reward,
	)
	if err != nil {
		return fmt.Errorf("record step: %w", err)
	}
	return nil
}

// #endregion record-step

// #region queries

// Steps returns one episode's transitions in step order.
func (s *Store) Steps(runID string, episode int) ([]Step, error) {
	rows, err := s.db.Query(
		`SELECT run_id, episode, step_idx, state, action, next_state, reward
		 FROM rollout_steps
		 WHERE run_id = ? AND episode = ?
		 ORDER BY step_idx ASC`,
		runID, episode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.RunID, &st.Episode, &st.Index, &st.State, &st.Action, &st.NextState, &st.Reward); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// EpisodeReturn sums the rewards of one episode.
func (s *Store) EpisodeReturn(runID string, episode int) (float64, error) {
	var total float64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(reward), 0) FROM rollout_steps WHERE run_id = ? AND episode = ?`,
		runID, episode,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("episode return: %w", err)
	}
	return total, nil
}

// Runs lists all recorded runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, created_at, seed, policy, episodes
		 FROM rollout_runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.RunID, &createdAt, &r.Seed, &r.Policy, &r.Episodes); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// #endregion queries
