package store

import (
	"context"
	"fmt"

	"github.com/roach88/minrx/internal/pattern"
)

// Run is one conformance run.
type Run struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Seed          uint64 `json:"seed"`
	Requested     int    `json:"requested"`
	Checked       int    `json:"checked"`
	Disagreements int    `json:"disagreements"`
	Exhausted     int    `json:"exhausted"`
	Finished      bool   `json:"finished"`
}

// Case is a recorded (pattern, subject) pair with the verdicts observed
// when it was recorded.
type Case struct {
	ID          int64
	RunID       string
	Fingerprint string
	Pattern     pattern.Node
	Subject     string
	VM          bool
	Oracle      bool
}

// BeginRun inserts a new, unfinished run. Seq is assigned by the store and
// the value in r is ignored.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, seed, requested)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?)
	`, r.ID, int64(r.Seed), r.Requested)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final tallies of a run and marks it finished.
// Returns ErrRunNotFound if the run was never begun.
func (s *Store) FinishRun(ctx context.Context, r Run) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET checked = ?, disagreements = ?, exhausted = ?, finished = 1
		WHERE id = ?
	`, r.Checked, r.Disagreements, r.Exhausted, r.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", r.ID, ErrRunNotFound)
	}
	return nil
}

// RecordCase stores a case under its run. The fingerprint is computed when
// c.Fingerprint is empty. A case whose (fingerprint, subject) pair is
// already stored is ignored; the boolean reports whether a row was added.
func (s *Store) RecordCase(ctx context.Context, c Case) (bool, error) {
	canonical, err := pattern.MarshalCanonical(c.Pattern)
	if err != nil {
		return false, fmt.Errorf("record case: %w", err)
	}

	fp := c.Fingerprint
	if fp == "" {
		fp, err = pattern.Fingerprint(c.Pattern)
		if err != nil {
			return false, fmt.Errorf("record case: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (run_id, fingerprint, pattern, subject, vm_verdict, oracle_verdict)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint, subject) DO NOTHING
	`, c.RunID, fp, string(canonical), c.Subject, c.VM, c.Oracle)
	if err != nil {
		return false, fmt.Errorf("record case: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record case: %w", err)
	}
	return n == 1, nil
}
