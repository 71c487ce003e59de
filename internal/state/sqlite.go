package state

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	path        TEXT PRIMARY KEY,
	output      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	build_id    TEXT NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS builds (
	id              TEXT PRIMARY KEY,
	started_at      INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	rendered        INTEGER NOT NULL,
	copied          INTEGER NOT NULL,
	skipped         INTEGER NOT NULL,
	outcome         TEXT NOT NULL,
	config_snapshot TEXT NOT NULL,
	commit_hash     TEXT,
	error           TEXT
);
CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the state database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, stateError(err, "create state directory").WithContext("path", path).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, stateError(err, "open sqlite database").WithContext("path", path).Build()
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, stateError(err, "initialize schema").WithContext("path", path).Build()
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Page(ctx context.Context, path string) (PageRecord, bool, error) {
	var (
		rec     PageRecord
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT path, output, fingerprint, build_id, updated_at FROM pages WHERE path = ?", path,
	).Scan(&rec.Path, &rec.Output, &rec.Fingerprint, &rec.BuildID, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return PageRecord{}, false, nil
	}
	if err != nil {
		return PageRecord{}, false, stateError(err, "query page").WithContext("path", path).Build()
	}
	rec.UpdatedAt = time.Unix(updated, 0)
	return rec, true, nil
}

func (s *SQLiteStore) PutPage(ctx context.Context, rec PageRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (path, output, fingerprint, build_id, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			output = excluded.output,
			fingerprint = excluded.fingerprint,
			build_id = excluded.build_id,
			updated_at = excluded.updated_at`,
		rec.Path, rec.Output, rec.Fingerprint, rec.BuildID, rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return stateError(err, "upsert page").WithContext("path", rec.Path).Build()
	}
	return nil
}

func (s *SQLiteStore) PrunePages(ctx context.Context, keep []string) ([]PageRecord, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		keepSet[p] = struct{}{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, stateError(err, "begin prune").Build()
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT path, output, fingerprint, build_id, updated_at FROM pages ORDER BY path")
	if err != nil {
		return nil, stateError(err, "query pages").Build()
	}
	removed, err := staleRecords(rows, keepSet)
	if err != nil {
		return nil, err
	}

	for _, rec := range removed {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE path = ?", rec.Path); err != nil {
			return nil, stateError(err, "delete page").WithContext("path", rec.Path).Build()
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, stateError(err, "commit prune").Build()
	}
	return removed, nil
}

// pageRows is the part of *sql.Rows that staleRecords reads.
type pageRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// staleRecords drains rows and returns the records whose path is not in keep.
// rows is always closed.
func staleRecords(rows pageRows, keep map[string]struct{}) ([]PageRecord, error) {
	defer func() { _ = rows.Close() }()

	var stale []PageRecord
	for rows.Next() {
		var (
			rec     PageRecord
			updated int64
		)
		if err := rows.Scan(&rec.Path, &rec.Output, &rec.Fingerprint, &rec.BuildID, &updated); err != nil {
			return nil, stateError(err, "scan page").Build()
		}
		if _, ok := keep[rec.Path]; ok {
			continue
		}
		rec.UpdatedAt = time.Unix(updated, 0)
		stale = append(stale, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, stateError(err, "iterate pages").Build()
	}
	if err := rows.Close(); err != nil {
		return nil, stateError(err, "close page rows").Build()
	}
	return stale, nil
}

func (s *SQLiteStore) RecordBuild(ctx context.Context, rec BuildRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (id, started_at, duration_ms, rendered, copied, skipped, outcome, config_snapshot, commit_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.Rendered, rec.Copied, rec.Skipped,
		string(rec.Outcome), rec.ConfigSnapshot, rec.Commit, rec.Error,
	)
	if err != nil {
		return stateError(err, "insert build").WithContext("build_id", rec.ID).Build()
	}
	return nil
}

func (s *SQLiteStore) LastBuild(ctx context.Context) (BuildRecord, bool, error) {
	var (
		rec              BuildRecord
		started, durMS   int64
		outcome          string
		commit, errorMsg sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ms, rendered, copied, skipped, outcome, config_snapshot, commit_hash, error
		FROM builds ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&rec.ID, &started, &durMS, &rec.Rendered, &rec.Copied, &rec.Skipped, &outcome, &rec.ConfigSnapshot, &commit, &errorMsg)
	if stderrors.Is(err, sql.ErrNoRows) {
		return BuildRecord{}, false, nil
	}
	if err != nil {
		return BuildRecord{}, false, stateError(err, "query last build").Build()
	}
	rec.StartedAt = time.UnixMilli(started)
	rec.Duration = time.Duration(durMS) * time.Millisecond
	rec.Outcome = metrics.BuildOutcomeLabel(outcome)
	rec.Commit = commit.String
	rec.Error = errorMsg.String
	return rec, true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func stateError(err error, msg string) *errors.ErrorBuilder {
	return errors.WrapError(err, errors.CategoryState, msg)
}
