package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kalkar/skewscan/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "skewscan.db"

// storedTimeFormat is fixed-width so that stored timestamps sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// RunDB stores classification runs.
type RunDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the run database in dbDir.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	// Several commands may open the same history at once.
	dsn += "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (r *RunDB) Path() string {
	return r.dbPath
}

// Close closes the database connection.
func (r *RunDB) Close() error {
	return r.db.Close()
}

func (r *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		corpus_dir TEXT NOT NULL,
		corpus_size INTEGER NOT NULL,
		corpus_digest TEXT,
		thresholds_json TEXT NOT NULL,
		flagged INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS flagged_pages (
		run_id TEXT NOT NULL,
		page_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		PRIMARY KEY (run_id, reason, page_id)
	);

	CREATE INDEX IF NOT EXISTS idx_flagged_page ON flagged_pages(page_id);
	`

	_, err := r.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores run and its flagged pages in one transaction.
// Saving a run id twice replaces the earlier copy.
func (r *RunDB) SaveRun(ctx context.Context, run *model.Run) (err error) {
	if run == nil || run.ID == "" {
		return errors.New("run has no id")
	}

	thresholds, err := json.Marshal(run.Thresholds)
	if err != nil {
		return fmt.Errorf("failed to serialize thresholds: %w", err)
	}

	result := run.Result
	if result == nil {
		result = model.NewClassificationResult()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteRun(ctx, tx, run.ID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, duration_ns, corpus_dir, corpus_size, corpus_digest, thresholds_json, flagged)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(storedTimeFormat),
		int64(run.Duration),
		run.CorpusDir,
		run.CorpusSize,
		run.CorpusDigest,
		string(thresholds),
		result.Total(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO flagged_pages (run_id, page_id, reason) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare flagged page insert: %w", err)
	}
	defer stmt.Close()

	for _, reason := range model.AllSkewReasons() {
		for _, id := range result.IDs(reason) {
			if _, err = stmt.ExecContext(ctx, run.ID, id, reason.String()); err != nil {
				return fmt.Errorf("failed to save flagged page %s: %w", id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun loads a run by id or by a unique id prefix.
func (r *RunDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	fullID, err := r.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		run        model.Run
		startedAt  string
		durationNS int64
		digest     sql.NullString
		thresholds string
	)
	err = r.db.QueryRowContext(ctx, `
	SELECT id, started_at, duration_ns, corpus_dir, corpus_size, corpus_digest, thresholds_json
	FROM runs WHERE id = ?
	`, fullID).Scan(&run.ID, &startedAt, &durationNS, &run.CorpusDir, &run.CorpusSize, &digest, &thresholds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = parseTimestamp(startedAt)
	run.Duration = time.Duration(durationNS)
	run.CorpusDigest = digest.String
	if err := json.Unmarshal([]byte(thresholds), &run.Thresholds); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds: %w", err)
	}

	run.Result, err = r.loadResult(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// resolveID expands an id prefix to the single stored id it matches.
func (r *RunDB) resolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT id FROM runs
	WHERE substr(id, 1, ?) = ?
	ORDER BY (id = ?) DESC, id
	LIMIT 2
	`, len(prefix), prefix, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to look up run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan run id: %w", err)
		}
		if id == prefix {
			return id, nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRunID, prefix)
	}
}

func (r *RunDB) loadResult(ctx context.Context, runID string) (*model.ClassificationResult, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT page_id, reason FROM flagged_pages WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flagged pages: %w", err)
	}
	defer rows.Close()

	result := model.NewClassificationResult()
	for rows.Next() {
		var pageID, reasonName string
		if err := rows.Scan(&pageID, &reasonName); err != nil {
			return nil, fmt.Errorf("failed to scan flagged page: %w", err)
		}
		reason, err := model.ParseSkewReason(reasonName)
		if err != nil {
			continue // written by a newer version
		}
		result.Add(reason, pageID)
	}
	return result, rows.Err()
}

// RunSummary is a run without its flagged pages, for listings.
type RunSummary struct {
	ID           string                   `json:"id"`
	StartedAt    time.Time                `json:"started_at"`
	CorpusDir    string                   `json:"corpus_dir"`
	CorpusSize   int                      `json:"corpus_size"`
	CorpusDigest string                   `json:"corpus_digest"`
	Flagged      int                      `json:"flagged"`
	Counts       map[model.SkewReason]int `json:"counts"`
}

// ListRuns returns every stored run, newest first.
func (r *RunDB) ListRuns(ctx context.Context) ([]RunSummary, error) {
	return r.listRuns(ctx, -1)
}

func (r *RunDB) listRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, started_at, corpus_dir, corpus_size, corpus_digest, flagged
	FROM runs
	ORDER BY started_at DESC, id
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			s         RunSummary
			startedAt string
			digest    sql.NullString
		)
		if err := rows.Scan(&s.ID, &startedAt, &s.CorpusDir, &s.CorpusSize, &digest, &s.Flagged); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.CorpusDigest = digest.String
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Close before issuing more queries on the single connection.
	rows.Close()

	for i := range summaries {
		counts, err := r.reasonCounts(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Counts = counts
	}
	return summaries, nil
}

func (r *RunDB) reasonCounts(ctx context.Context, runID string) (map[model.SkewReason]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT reason, COUNT(*) FROM flagged_pages WHERE run_id = ? GROUP BY reason`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count flagged pages: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.SkewReason]int, len(model.AllSkewReasons()))
	for _, reason := range model.AllSkewReasons() {
		counts[reason] = 0
	}
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		if reason, err := model.ParseSkewReason(name); err == nil {
			counts[reason] = count
		}
	}
	return counts, rows.Err()
}

// LatestRuns returns up to n most recent runs with their results.
func (r *RunDB) LatestRuns(ctx context.Context, n int) ([]*model.Run, error) {
	if n <= 0 {
		return nil, nil
	}
	summaries, err := r.listRuns(ctx, n)
	if err != nil {
		return nil, err
	}

	runs := make([]*model.Run, 0, len(summaries))
	for _, s := range summaries {
		run, err := r.GetRun(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// CompareRuns reports which pages were flagged in to but not in from, and
// the reverse, for every reason.
func (r *RunDB) CompareRuns(ctx context.Context, fromID, toID string) (*model.RunDiff, error) {
	from, err := r.GetRun(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := r.GetRun(ctx, toID)
	if err != nil {
		return nil, err
	}

	added, removed := model.DiffResults(from.Result, to.Result)
	return &model.RunDiff{
		From:    from.ID,
		To:      to.ID,
		Added:   added,
		Removed: removed,
	}, nil
}

// DeleteRun removes a run and its flagged pages.
func (r *RunDB) DeleteRun(ctx context.Context, id string) error {
	fullID, err := r.resolveID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := deleteRun(ctx, tx, fullID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}

func deleteRun(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM flagged_pages WHERE run_id = ?`, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each of timestampFormats and returns the zero time
// when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
