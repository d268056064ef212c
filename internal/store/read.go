package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// ErrNotFound is returned when no rule is stored under a label.
var ErrNotFound = errors.New("rule not found")

const selectRule = `
	SELECT label, hash, content_hash, when_json, then_json, normalised, branches, ir_version
	FROM rules
`

// ReadRule returns the rule stored under label.
func (s *Store) ReadRule(ctx context.Context, label string) (ir.RuleRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRule+` WHERE label = ?`, label)
	rec, err := scanRule(row)
	if isNoRows(err) {
		return ir.RuleRecord{}, fmt.Errorf("read rule %q: %w", label, ErrNotFound)
	}
	if err != nil {
		return ir.RuleRecord{}, fmt.Errorf("read rule %q: %w", label, err)
	}
	return rec, nil
}

// ListRules returns every stored rule ordered by label (binary collation).
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRules(ctx context.Context) ([]ir.RuleRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRule+` ORDER BY label COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	records := []ir.RuleRecord{}
	for rows.Next() {
		rec, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return records, nil
}

// CountRules returns the number of stored rules.
func (s *Store) CountRules(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(sc scanner) (ir.RuleRecord, error) {
	var rec ir.RuleRecord
	err := sc.Scan(
		&rec.Label,
		&rec.Hash,
		&rec.ContentHash,
		&rec.When,
		&rec.Then,
		&rec.Normalised,
		&rec.Branches,
		&rec.IRVersion,
	)
	return rec, err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
