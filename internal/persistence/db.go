// Package persistence provides SQLite-based run recording. It is a
// consumer of the session API: the live game stays entirely in memory,
// the recorder only keeps a trail of completed turns for later
// tabulation.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/croplab/veggiechain/internal/session"
	"github.com/croplab/veggiechain/internal/sim"
)

// DB wraps a SQLite connection for run recording.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		weather_enabled INTEGER NOT NULL,
		parameters_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		run_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		decisions_json TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (run_id, turn)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_run ON turns(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a session before its first recorded turn.
func (db *DB) BeginRun(id uuid.UUID, params sim.Parameters, weatherEnabled bool) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	weather := 0
	if weatherEnabled {
		weather = 1
	}

	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO runs (id, started_at, weather_enabled, parameters_json) VALUES (?, ?, ?, ?)",
		id.String(), time.Now().UTC().Format(time.RFC3339), weather, string(paramsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}

	slog.Info("run recording started", "run", id, "weather", weatherEnabled)
	return nil
}

// RecordTurn appends one post-advance snapshot to the run's trail.
func (db *DB) RecordTurn(id uuid.UUID, snap session.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	decisionsJSON, err := json.Marshal(snap.Decisions)
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}

	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO turns (run_id, turn, state_json, decisions_json, recorded_at) VALUES (?, ?, ?, ?, ?)",
		id.String(), snap.State.Turn, string(stateJSON), string(decisionsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert turn %d of run %s: %w", snap.State.Turn, id, err)
	}
	return nil
}

// RecordHistory writes a session's full history in one transaction.
// Used on reset and shutdown to make sure nothing was missed.
func (db *DB) RecordHistory(id uuid.UUID, history []session.Snapshot) error {
	if len(history) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT OR REPLACE INTO turns (run_id, turn, state_json, decisions_json, recorded_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, snap := range history {
		stateJSON, err := json.Marshal(snap.State)
		if err != nil {
			return fmt.Errorf("marshal state: %w", err)
		}
		decisionsJSON, err := json.Marshal(snap.Decisions)
		if err != nil {
			return fmt.Errorf("marshal decisions: %w", err)
		}
		if _, err := stmt.Exec(id.String(), snap.State.Turn, string(stateJSON), string(decisionsJSON), now); err != nil {
			return fmt.Errorf("insert turn %d of run %s: %w", snap.State.Turn, id, err)
		}
	}

	return tx.Commit()
}

// RunTurns loads the recorded trail for one run, in turn order.
func (db *DB) RunTurns(id uuid.UUID) ([]session.Snapshot, error) {
	var run struct {
		ParametersJSON string `db:"parameters_json"`
	}
	if err := db.conn.Get(&run, "SELECT parameters_json FROM runs WHERE id = ?", id.String()); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	var params sim.Parameters
	if err := json.Unmarshal([]byte(run.ParametersJSON), &params); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	var rows []struct {
		StateJSON     string `db:"state_json"`
		DecisionsJSON string `db:"decisions_json"`
	}
	err := db.conn.Select(&rows,
		"SELECT state_json, decisions_json FROM turns WHERE run_id = ? ORDER BY turn",
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load turns of run %s: %w", id, err)
	}

	snaps := make([]session.Snapshot, 0, len(rows))
	for _, row := range rows {
		var snap session.Snapshot
		if err := json.Unmarshal([]byte(row.StateJSON), &snap.State); err != nil {
			return nil, fmt.Errorf("parse state: %w", err)
		}
		if err := json.Unmarshal([]byte(row.DecisionsJSON), &snap.Decisions); err != nil {
			return nil, fmt.Errorf("parse decisions: %w", err)
		}
		snap.Parameters = params
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Runs lists recorded run IDs, most recent first.
func (db *DB) Runs() ([]uuid.UUID, error) {
	var ids []string
	if err := db.conn.Select(&ids, "SELECT id FROM runs ORDER BY started_at DESC"); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", raw, err)
		}
		out = append(out, id)
	}
	return out, nil
}
