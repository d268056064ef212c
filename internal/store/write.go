package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// ErrLabelConflict is returned when a label is already stored with
// different content.
var ErrLabelConflict = errors.New("label already stored with a different rule")

// ErrHashConflict is returned when identical content is already stored
// under another label.
var ErrHashConflict = errors.New("rule content already stored under another label")

// WriteRule stores rec. Writing a record whose label and hash are already
// stored is a no-op and reports inserted=false.
func (s *Store) WriteRule(ctx context.Context, rec ir.RuleRecord) (inserted bool, err error) {
	if rec.Label == "" || rec.Hash == "" || rec.ContentHash == "" {
		return false, fmt.Errorf("write rule: label, hash and content hash are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write rule: %w", err)
	}
	defer tx.Rollback()

	var storedHash, storedLabel string
	err = tx.QueryRowContext(ctx, `SELECT hash FROM rules WHERE label = ?`, rec.Label).Scan(&storedHash)
	switch {
	case err == nil && storedHash == rec.Hash:
		return false, nil
	case err == nil:
		return false, fmt.Errorf("write rule %q: %w (stored %s, new %s)", rec.Label, ErrLabelConflict, storedHash, rec.Hash)
	case !isNoRows(err):
		return false, fmt.Errorf("write rule %q: %w", rec.Label, err)
	}

	err = tx.QueryRowContext(ctx, `SELECT label FROM rules WHERE content_hash = ?`, rec.ContentHash).Scan(&storedLabel)
	switch {
	case err == nil:
		return false, fmt.Errorf("write rule %q: %w (%q)", rec.Label, ErrHashConflict, storedLabel)
	case !isNoRows(err):
		return false, fmt.Errorf("write rule %q: %w", rec.Label, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rules
		(label, hash, content_hash, when_json, then_json, normalised, branches, ir_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM rules))
	`,
		rec.Label,
		rec.Hash,
		rec.ContentHash,
		rec.When,
		rec.Then,
		rec.Normalised,
		rec.Branches,
		rec.IRVersion,
	)
	if err != nil {
		return false, fmt.Errorf("write rule %q: %w", rec.Label, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write rule %q: %w", rec.Label, err)
	}
	s.logger.Debug("stored rule", "label", rec.Label, "hash", rec.Hash, "branches", rec.Branches)
	return true, nil
}

// DeleteRule removes the rule stored under label and reports whether
// there was one.
func (s *Store) DeleteRule(ctx context.Context, label string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE label = ?`, label)
	if err != nil {
		return false, fmt.Errorf("delete rule %q: %w", label, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rule %q: %w", label, err)
	}
	if n > 0 {
		s.logger.Debug("deleted rule", "label", label)
	}
	return n > 0, nil
}
