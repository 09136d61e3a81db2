package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/wneura/internal/brain"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS state_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	run_id        TEXT,
	step          INTEGER NOT NULL DEFAULT 0,
	snapshot_json TEXT NOT NULL,
	values_json   TEXT,
	created_at    TEXT NOT NULL,
	metrics_json  TEXT,
	FOREIGN KEY (parent_id) REFERENCES state_versions(version_id)
);

CREATE TABLE IF NOT EXISTS memory_traces (
	trace_id      TEXT NOT NULL,
	version_id    TEXT NOT NULL,
	step_id       INTEGER NOT NULL,
	action        INTEGER NOT NULL,
	reward        REAL NOT NULL,
	surprise      REAL NOT NULL,
	cortisol      REAL NOT NULL,
	importance    REAL NOT NULL,
	payload_json  TEXT,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (trace_id, version_id),
	FOREIGN KEY (version_id) REFERENCES state_versions(version_id)
);

CREATE TABLE IF NOT EXISTS step_log (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id             TEXT NOT NULL,
	step               INTEGER NOT NULL,
	phase              TEXT,
	action             INTEGER NOT NULL,
	reward             REAL NOT NULL,
	stress_signal      REAL NOT NULL DEFAULT 0,
	stress_pulse       REAL NOT NULL DEFAULT 0,
	use_cortisol       INTEGER NOT NULL DEFAULT 0,
	prediction_error   REAL NOT NULL,
	cortisol           REAL NOT NULL,
	agency             REAL NOT NULL,
	resistance         REAL NOT NULL,
	learning_step_size REAL NOT NULL,
	new_value          REAL NOT NULL,
	effective_reward   REAL NOT NULL,
	receptor_health    REAL NOT NULL,
	encoded            INTEGER NOT NULL,
	decision           TEXT NOT NULL,
	reason             TEXT,
	created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_state (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES state_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store manages versioned agent snapshots and the trace archive in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-migrated database.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the schema to db. Safe to run repeatedly.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region new-record
// NewRecord builds the child of parent with a fresh version ID. An empty
// parent produces a root record.
func NewRecord(parent StateRecord, snap brain.Snapshot, values []float64, step int) StateRecord {
	return StateRecord{
		VersionID: uuid.New().String(),
		ParentID:  parent.VersionID,
		RunID:     parent.RunID,
		Step:      step,
		Snapshot:  snap,
		Values:    append([]float64(nil), values...),
		CreatedAt: time.Now().UTC(),
	}
}

// #endregion new-record

// #region create-initial
// CreateInitialState stores a root version and makes it active.
func (s *Store) CreateInitialState(runID string, snap brain.Snapshot, values []float64) (StateRecord, error) {
	rec := NewRecord(StateRecord{RunID: runID}, snap, values, 0)

	snapJSON, valuesJSON, err := encodeRecord(rec)
	if err != nil {
		return StateRecord{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return StateRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO state_versions (version_id, parent_id, run_id, step, snapshot_json, values_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nil, nullIfEmpty(rec.RunID), rec.Step, snapJSON, valuesJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return StateRecord{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_state (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return StateRecord{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return StateRecord{}, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}

// #endregion create-initial

// #region get-current
// GetCurrent reads the active state version.
func (s *Store) GetCurrent() (StateRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_state WHERE id = 1`).Scan(&versionID)
	if err != nil {
		return StateRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
const versionColumns = `version_id, parent_id, run_id, step, snapshot_json, values_json, created_at, metrics_json`

// GetVersion retrieves a specific state version by ID.
func (s *Store) GetVersion(id string) (StateRecord, error) {
	row := s.db.QueryRow(`SELECT `+versionColumns+` FROM state_versions WHERE version_id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return StateRecord{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region commit-state
// CommitState inserts a new version and updates the active pointer atomically.
func (s *Store) CommitState(rec StateRecord) error {
	return s.CommitWithTraces(rec, nil)
}

// CommitWithTraces inserts a new version, archives its traces and updates the
// active pointer in one transaction. On any failure nothing is written.
func (s *Store) CommitWithTraces(rec StateRecord, traces []TraceRecord) error {
	snapJSON, valuesJSON, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO state_versions (version_id, parent_id, run_id, step, snapshot_json, values_json, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), nullIfEmpty(rec.RunID), rec.Step,
		snapJSON, valuesJSON, rec.CreatedAt.Format(time.RFC3339Nano), nullIfEmpty(rec.MetricsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	if len(traces) > 0 {
		if err := insertTraces(tx, rec.VersionID, traces); err != nil {
			return err
		}
	}

	_, err = tx.Exec(
		`INSERT INTO active_state (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("update active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit-state

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM state_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_state SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent state versions, newest first.
func (s *Store) ListVersions(limit int) ([]StateRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+versionColumns+` FROM state_versions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []StateRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-versions

// #region traces
// SaveTraces archives the memory traces held at a version.
func (s *Store) SaveTraces(versionID string, traces []TraceRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertTraces(tx, versionID, traces); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTraces(tx *sql.Tx, versionID string, traces []TraceRecord) error {
	stmt, err := tx.Prepare(
		`INSERT INTO memory_traces (trace_id, version_id, step_id, action, reward, surprise, cortisol, importance, payload_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare trace insert: %w", err)
	}
	defer stmt.Close()

	for _, tr := range traces {
		created := tr.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if _, err := stmt.Exec(
			tr.TraceID, versionID, tr.Step, tr.Action, tr.Reward, tr.Surprise, tr.Cortisol,
			tr.Importance, nullIfEmpty(tr.PayloadJSON), created.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert trace %s: %w", tr.TraceID, err)
		}
	}
	return nil
}

// ListTraces returns the traces archived at a version, most important first.
func (s *Store) ListTraces(versionID string) ([]TraceRecord, error) {
	rows, err := s.db.Query(
		`SELECT trace_id, version_id, step_id, action, reward, surprise, cortisol, importance, payload_json, created_at
		 FROM memory_traces WHERE version_id = ? ORDER BY importance DESC, step_id ASC`, versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var out []TraceRecord
	for rows.Next() {
		var tr TraceRecord
		var payload sql.NullString
		var createdStr string
		if err := rows.Scan(&tr.TraceID, &tr.VersionID, &tr.Step, &tr.Action, &tr.Reward, &tr.Surprise,
			&tr.Cortisol, &tr.Importance, &payload, &createdStr); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		if payload.Valid {
			tr.PayloadJSON = payload.String
		}
		tr.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, tr)
	}
	return out, rows.Err()
}

// #endregion traces

// #region encoding
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (StateRecord, error) {
	var rec StateRecord
	var parentID, runID, valuesJSON, metricsJSON sql.NullString
	var snapJSON, createdStr string

	if err := row.Scan(&rec.VersionID, &parentID, &runID, &rec.Step, &snapJSON, &valuesJSON, &createdStr, &metricsJSON); err != nil {
		return StateRecord{}, err
	}
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if runID.Valid {
		rec.RunID = runID.String
	}
	snap, err := brain.DecodeSnapshot([]byte(snapJSON))
	if err != nil {
		return StateRecord{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	rec.Snapshot = snap
	if valuesJSON.Valid {
		if err := json.Unmarshal([]byte(valuesJSON.String), &rec.Values); err != nil {
			return StateRecord{}, fmt.Errorf("unmarshal values: %w", err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if metricsJSON.Valid {
		rec.MetricsJSON = metricsJSON.String
	}
	return rec, nil
}

func encodeRecord(rec StateRecord) (string, interface{}, error) {
	snapJSON, err := rec.Snapshot.Encode()
	if err != nil {
		return "", nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	var valuesJSON interface{}
	if rec.Values != nil {
		b, err := json.Marshal(rec.Values)
		if err != nil {
			return "", nil, fmt.Errorf("marshal values: %w", err)
		}
		valuesJSON = string(b)
	}
	return string(snapJSON), valuesJSON, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion encoding
