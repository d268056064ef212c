package store

import (
	"path/filepath"
	"testing"

	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/pattern"
	"github.com/typedb/typeql-sub003/internal/rule"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord builds the record of a valid rule
// "when $x isa <typ> then $x has <attr> true".
func createTestRecord(t *testing.T, label, typ, attr string) ir.RuleRecord {
	t.Helper()
	x := pattern.Named("x")
	r := rule.New(label,
		pattern.NewConjunction(pattern.NewStatement(x, pattern.Isa(pattern.Label(typ, "")))),
		pattern.NewStatement(x, pattern.HasValue(attr, pattern.Value(pattern.Eq, ir.IRBool(true)))),
	)
	rec, err := rule.Record(r)
	if err != nil {
		t.Fatalf("Record(%s) failed: %v", label, err)
	}
	return rec
}
