package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	ferror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/foundation/utils/stringx"
)

// Origin names where a run came from
type Origin string

const (
	OriginCLI        Origin = "cli"
	OriginWatch      Origin = "watch"
	OriginPlayground Origin = "playground"
	OriginREPL       Origin = "repl"
)

// previewLength bounds RunRecord.Preview
const previewLength = 60

// ErrNotFound is returned by Get for an unknown run ID
var ErrNotFound = errors.New("run not found")

// RunRecord is one recorded program run
type RunRecord struct {
	ID           string           `json:"id"`
	StartedAt    time.Time        `json:"started_at"`
	Origin       Origin           `json:"origin"`
	Source       string           `json:"source"`
	Output       []string         `json:"output"`
	ErrorKind    script.ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Duration     time.Duration    `json:"duration"`
}

// NewRunRecord describes a finished engine run. result may be nil.
func NewRunRecord(origin Origin, source string, result *script.Result, runErr error) *RunRecord {
	rec := &RunRecord{
		Origin:    origin,
		Source:    source,
		Output:    []string{},
		ErrorKind: script.KindOf(runErr),
	}
	if result != nil {
		rec.Duration = result.Duration
		if result.Output != nil {
			rec.Output = result.Output
		}
	}
	if runErr != nil {
		rec.ErrorMessage = script.Describe(runErr)
	}
	return rec
}

// Failed reports whether the run ended with an error
func (r *RunRecord) Failed() bool {
	return r.ErrorKind != script.KindNone
}

// Preview returns the source collapsed to one short line
func (r *RunRecord) Preview() string {
	return stringx.Truncate(stringx.OneLine(r.Source), previewLength, "...")
}

// RunFilter defines criteria for listing runs
type RunFilter struct {
	Origin     Origin
	OnlyFailed bool
	Since      time.Time
	Limit      int
	Offset     int
}

// RunStats summarizes the recorded runs
type RunStats struct {
	Total    int64
	Failed   int64
	ByOrigin map[Origin]int64
	ByKind   map[script.ErrorKind]int64
	LastRun  time.Time
}

// RunStore defines the interface for run persistence
type RunStore interface {
	Record(ctx context.Context, rec *RunRecord) error
	Get(ctx context.Context, id string) (*RunRecord, error)
	List(ctx context.Context, filter RunFilter) ([]*RunRecord, error)
	Stats(ctx context.Context) (*RunStats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRunStore implements RunStore using SQLite
type SQLiteRunStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteRunConfig holds configuration for the SQLite store
type SQLiteRunConfig struct {
	Path string
}

// DefaultRunConfig returns default configuration
func DefaultRunConfig() SQLiteRunConfig {
	return SQLiteRunConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteRunStore creates a new SQLite-based run store
func NewSQLiteRunStore(cfg SQLiteRunConfig) (*SQLiteRunStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "store.Open")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.Open")
	}

	store := &SQLiteRunStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.Open")
	}

	return store, nil
}

func dbError(err error, message, operation string) *ferror.Error {
	return ferror.Wrap(err, message).
		WithCode(ferror.CodeDatabaseError).
		WithOperation(operation)
}

// initSchema creates the necessary tables
func (s *SQLiteRunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		origin TEXT NOT NULL,
		source TEXT NOT NULL,
		output TEXT NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_origin ON runs(origin);
	CREATE INDEX IF NOT EXISTS idx_runs_error_kind ON runs(error_kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run, assigning an ID and start time when missing
func (s *SQLiteRunStore) Record(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)

	outputJSON, err := json.Marshal(rec.Output)
	if err != nil {
		return dbError(err, "failed to encode output", "store.Record")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, origin, source, output, error_kind, error_message, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.StartedAt.UnixNano(), string(rec.Origin), rec.Source, string(outputJSON),
		string(rec.ErrorKind), rec.ErrorMessage, int64(rec.Duration))
	if err != nil {
		return dbError(err, "failed to insert run", "store.Record").WithRunID(rec.ID)
	}

	return nil
}

func prepare(rec *RunRecord) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	if rec.Output == nil {
		rec.Output = []string{}
	}
}

const selectRuns = `SELECT id, started_at, origin, source, output, error_kind, error_message, duration_ns FROM runs`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		rec        RunRecord
		startedAt  int64
		origin     string
		outputJSON string
		kind       string
		durationNs int64
	)
	if err := row.Scan(&rec.ID, &startedAt, &origin, &rec.Source, &outputJSON,
		&kind, &rec.ErrorMessage, &durationNs); err != nil {
		return nil, err
	}

	rec.StartedAt = time.Unix(0, startedAt)
	rec.Origin = Origin(origin)
	rec.ErrorKind = script.ErrorKind(kind)
	rec.Duration = time.Duration(durationNs)
	if err := json.Unmarshal([]byte(outputJSON), &rec.Output); err != nil || rec.Output == nil {
		rec.Output = []string{}
	}
	return &rec, nil
}

// Get returns a single run
func (s *SQLiteRunStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ferror.Wrap(ErrNotFound, "get run").
			WithCode(ferror.CodeNotFound).
			WithOperation("store.Get").
			WithRunID(id)
	}
	if err != nil {
		return nil, dbError(err, "failed to get run", "store.Get").WithRunID(id)
	}
	return rec, nil
}

// List retrieves runs newest first
func (s *SQLiteRunStore) List(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}
	if filter.OnlyFailed {
		query += " AND error_kind != ''"
	}
	if !filter.Since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, filter.Since.UnixNano())
	}

	query += " ORDER BY started_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs", "store.List")
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run", "store.List")
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read runs", "store.List")
	}

	return runs, nil
}

// Stats returns run statistics
func (s *SQLiteRunStore) Stats(ctx context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &RunStats{
		ByOrigin: make(map[Origin]int64),
		ByKind:   make(map[script.ErrorKind]int64),
	}

	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(error_kind != ''), 0), MAX(started_at) FROM runs`).
		Scan(&stats.Total, &stats.Failed, &last)
	if err != nil {
		return nil, dbError(err, "failed to count runs", "store.Stats")
	}
	if last.Valid {
		stats.LastRun = time.Unix(0, last.Int64)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT origin, error_kind, COUNT(*) FROM runs GROUP BY origin, error_kind`)
	if err != nil {
		return nil, dbError(err, "failed to group runs", "store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var origin, kind string
		var count int64
		if err := rows.Scan(&origin, &kind, &count); err != nil {
			return nil, dbError(err, "failed to scan run stats", "store.Stats")
		}
		stats.ByOrigin[Origin(origin)] += count
		if kind != "" {
			stats.ByKind[script.ErrorKind(kind)] += count
		}
	}

	return stats, rows.Err()
}

// Prune removes runs older than the specified duration
func (s *SQLiteRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, dbError(err, fmt.Sprintf("failed to prune runs older than %s", olderThan), "store.Prune")
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Vacuum optimizes the database
func (s *SQLiteRunStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return err
}

// Close closes the database connection
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}
