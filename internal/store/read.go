package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/minrx/internal/pattern"
)

// Runs returns every run in the order it was begun.
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, seed, requested, checked, disagreements, exhausted, finished
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run. Returns ErrRunNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, seed, requested, checked, disagreements, exhausted, finished
		FROM runs
		WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Cases returns every recorded case in insertion order.
// Returns an empty slice (not nil) if no cases exist.
func (s *Store) Cases(ctx context.Context) ([]Case, error) {
	return s.queryCases(ctx, `
		SELECT id, run_id, fingerprint, pattern, subject, vm_verdict, oracle_verdict
		FROM cases
		ORDER BY id ASC
	`)
}

// CasesForRun returns the cases first recorded by the given run.
func (s *Store) CasesForRun(ctx context.Context, runID string) ([]Case, error) {
	return s.queryCases(ctx, `
		SELECT id, run_id, fingerprint, pattern, subject, vm_verdict, oracle_verdict
		FROM cases
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
}

func (s *Store) queryCases(ctx context.Context, query string, args ...any) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	cases := []Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return cases, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r    Run
		seed int64
	)
	if err := row.Scan(&r.ID, &r.Seq, &seed, &r.Requested, &r.Checked, &r.Disagreements, &r.Exhausted, &r.Finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Seed = uint64(seed)
	return r, nil
}

func scanCase(row scanner) (Case, error) {
	var (
		c         Case
		canonical string
	)
	if err := row.Scan(&c.ID, &c.RunID, &c.Fingerprint, &canonical, &c.Subject, &c.VM, &c.Oracle); err != nil {
		return Case{}, fmt.Errorf("scan case: %w", err)
	}

	n, err := pattern.UnmarshalCanonical([]byte(canonical))
	if err != nil {
		return Case{}, fmt.Errorf("scan case %d: %w", c.ID, err)
	}
	c.Pattern = n
	return c, nil
}
