package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequenceGenerator hands out ids "<prefix>-1", "<prefix>-2", ... in call
// order. It satisfies pattern.IDGenerator, so tests that build anonymous
// variables get stable encodings and hashes.
//
// Safe for concurrent use.
type SequenceGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceGenerator creates a generator. An empty prefix becomes "anon".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "anon"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

// FixedGenerator returns predetermined ids in order and panics once they
// run out, which flags a test that built more anonymous variables than it
// declared.
type FixedGenerator struct {
	ids []string
	idx atomic.Int64
}

// NewFixedGenerator creates a generator over ids.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	i := g.idx.Add(1) - 1
	if int(i) >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	return g.ids[i]
}
