// Package store handles SQLite persistence of completed runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/spiauthor/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when no stored run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Filter narrows ListRuns.
type Filter struct {
	Tag   string
	Limit int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Sweep workers share one handle; a single connection serializes writers.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			tag TEXT NOT NULL,
			n INTEGER NOT NULL,
			top_s INTEGER NOT NULL,
			known_path TEXT NOT NULL,
			disputed_path TEXT NOT NULL,
			results_dir TEXT NOT NULL,
			fragment_count INTEGER NOT NULL,
			known_profile INTEGER NOT NULL,
			mean REAL NOT NULL,
			sigma REAL NOT NULL,
			disputed_spi INTEGER NOT NULL,
			disputed_z REAL NOT NULL,
			verdict TEXT NOT NULL,
			distribution TEXT NOT NULL,
			df INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_fragments (
			run_id INTEGER NOT NULL,
			fragment_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			spi INTEGER NOT NULL,
			z REAL NOT NULL,
			preview TEXT NOT NULL,
			PRIMARY KEY (run_id, fragment_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_tag ON runs(tag);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run and its fragment scores.
func (s *Store) InsertRun(ctx context.Context, run model.Run, resultsDir string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, tag, n, top_s, known_path, disputed_path, results_dir, fragment_count, known_profile, mean, sigma, disputed_spi, disputed_z, verdict, distribution, df)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Tag,
		run.Params.N,
		run.Params.TopS,
		run.Known.Path,
		run.Disputed.Path,
		resultsDir,
		len(run.Scores),
		run.KnownProfile,
		run.Population.Mean,
		run.Population.Sigma,
		run.DisputedSPI,
		run.DisputedZ,
		run.Verdict.Key(),
		string(run.Distribution.Kind),
		run.Distribution.DF,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(run.Scores) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_fragments (run_id, fragment_id, position, spi, z, preview)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, score := range run.Scores {
			if _, err := stmt.ExecContext(ctx, id, score.ID, i, score.SPI, score.Z, score.Preview); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

const runColumns = `id, created_at, tag, n, top_s, known_path, disputed_path, results_dir, fragment_count, mean, sigma, disputed_spi, disputed_z, verdict`

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context, f Filter) ([]model.RunSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Tag != "" {
		clauses = append(clauses, "tag = ?")
		args = append(args, f.Tag)
	}
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY created_at DESC, id DESC`, runColumns, strings.Join(clauses, " AND "))
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestRun returns the most recent run, restricted to tag when it is set.
func (s *Store) LatestRun(ctx context.Context, tag string) (model.RunSummary, error) {
	runs, err := s.ListRuns(ctx, Filter{Tag: tag, Limit: 1})
	if err != nil {
		return model.RunSummary{}, err
	}
	if len(runs) == 0 {
		if tag != "" {
			return model.RunSummary{}, fmt.Errorf("%w: tag %s", ErrNotFound, tag)
		}
		return model.RunSummary{}, ErrNotFound
	}
	return runs[0], nil
}

// ListFragmentScores returns the fragment scores of a run in fragment order.
func (s *Store) ListFragmentScores(ctx context.Context, runID int64) ([]model.FragmentScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fragment_id, spi, z, preview FROM run_fragments WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.FragmentScore
	for rows.Next() {
		var score model.FragmentScore
		if err := rows.Scan(&score.ID, &score.SPI, &score.Z, &score.Preview); err != nil {
			return nil, err
		}
		result = append(result, score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.RunSummary, error) {
	var r model.RunSummary
	var createdAt, verdict string
	if err := row.Scan(&r.ID, &createdAt, &r.Tag, &r.N, &r.TopS, &r.KnownPath, &r.DisputedPath, &r.ResultsDir,
		&r.FragmentCount, &r.Mean, &r.Sigma, &r.DisputedSPI, &r.DisputedZ, &verdict); err != nil {
		return model.RunSummary{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.RunSummary{}, err
	}
	r.CreatedAt = parsed
	v, err := model.ParseVerdict(verdict)
	if err != nil {
		return model.RunSummary{}, err
	}
	r.Verdict = v
	return r, nil
}
