package store

import (
	"context"
	"fmt"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// Mismatch is a stored rule whose hash no longer matches its content.
type Mismatch struct {
	Label    string
	Stored   string
	Computed string
	Err      error
}

// VerifyResult is the outcome of replaying every stored hash.
type VerifyResult struct {
	Checked    int
	Mismatches []Mismatch
}

// OK reports whether every stored hash was reproduced.
func (r VerifyResult) OK() bool { return len(r.Mismatches) == 0 }

// Verify recomputes the hash and content hash of every stored rule from
// its label and its canonical body and head JSON.
func (s *Store) Verify(ctx context.Context) (VerifyResult, error) {
	records, err := s.ListRules(ctx)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verify: %w", err)
	}

	var result VerifyResult
	for _, rec := range records {
		result.Checked++
		hash, content, err := recomputeHashes(rec)
		switch {
		case err != nil:
			result.Mismatches = append(result.Mismatches, Mismatch{Label: rec.Label, Stored: rec.Hash, Err: err})
		case hash != rec.Hash:
			result.Mismatches = append(result.Mismatches, Mismatch{Label: rec.Label, Stored: rec.Hash, Computed: hash})
		// Rows written before migration 2 have no content hash.
		case rec.ContentHash != "" && content != rec.ContentHash:
			result.Mismatches = append(result.Mismatches, Mismatch{Label: rec.Label, Stored: rec.ContentHash, Computed: content})
		}
	}
	return result, nil
}

func recomputeHashes(rec ir.RuleRecord) (hash, content string, err error) {
	when, err := ir.UnmarshalIRObject([]byte(rec.When))
	if err != nil {
		return "", "", fmt.Errorf("decode body: %w", err)
	}
	then, err := ir.UnmarshalIRObject([]byte(rec.Then))
	if err != nil {
		return "", "", fmt.Errorf("decode head: %w", err)
	}
	if hash, err = ir.RuleHash(rec.Label, when, then); err != nil {
		return "", "", err
	}
	if content, err = ir.RuleContentHash(when, then); err != nil {
		return "", "", err
	}
	return hash, content, nil
}
