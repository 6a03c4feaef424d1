package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunRunning   = "running"
	RunFinished  = "finished"
	RunCancelled = "cancelled"
	RunFailed    = "failed"
)

// ErrRunNotFound is returned when no run matches an ID or prefix.
var ErrRunNotFound = errors.New("storage: run not found")

// Run is one training session.
type Run struct {
	ID          string
	Population  int
	Generations int
	Seed        int64
	Config      string // Effective config as YAML
	Status      string
	BestFitness float64
	Champion    string // Encoded champion genome
	StartedAt   time.Time
	FinishedAt  time.Time // Zero while running
}

// Generation is the stored summary of one evaluated generation.
type Generation struct {
	RunID      string
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	Median     float64
	Score      int
	Ticks      int
	BestGenome int
	Reason     string
	CreatedAt  time.Time
}

// CreateRun inserts a new running training session and returns its ID.
func (s *Store) CreateRun(population, generations int, seed int64, configYAML string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, population, generations, seed, config, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, population, generations, seed, configYAML, RunRunning,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot create run: %w", err)
	}
	return id, nil
}

// FinishRun records how a run ended and its champion.
func (s *Store) FinishRun(id, status string, bestFitness float64, champion string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, best_fitness = ?, champion = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, bestFitness, champion, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// SaveGeneration stores one generation summary. Saving the same
// generation twice replaces the earlier row.
func (s *Store) SaveGeneration(g Generation) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO generations
		 (run_id, generation, best, mean, stddev, median, score, ticks, best_genome, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, g.Best, g.Mean, g.StdDev, g.Median, g.Score, g.Ticks, g.BestGenome, g.Reason,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation: %w", err)
	}
	return nil
}

// Generations returns every stored generation of a run in order.
func (s *Store) Generations(runID string) ([]Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, best, mean, stddev, median, score, ticks, best_genome, reason, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var g Generation
		var createdAt any
		if err := rows.Scan(&g.RunID, &g.Generation, &g.Best, &g.Mean, &g.StdDev, &g.Median,
			&g.Score, &g.Ticks, &g.BestGenome, &g.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.CreatedAt = parseTime(createdAt)
		gens = append(gens, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return gens, nil
}

const runColumns = `id, population, generations, seed, config, status, best_fitness, champion, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var startedAt, finishedAt any
	err := row.Scan(&r.ID, &r.Population, &r.Generations, &r.Seed, &r.Config, &r.Status,
		&r.BestFitness, &r.Champion, &startedAt, &finishedAt)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)
	return r, nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun() (Run, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query latest run: %w", err)
	}
	return r, nil
}

// FindRun returns the run whose ID starts with prefix. A prefix matching
// more than one run is an error.
func (s *Store) FindRun(prefix string) (Run, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' LIMIT 2`,
		prefix,
	)
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return Run{}, fmt.Errorf("storage: run prefix %q is ambiguous", prefix)
	}
}
