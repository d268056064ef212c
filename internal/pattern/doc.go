// Package pattern is the pattern algebra of the query front end.
//
// A pattern is a tree built from four node kinds:
//
//	Statement    a variable and its constraints ($x isa person, has age 30)
//	Conjunction  all children hold
//	Disjunction  at least one child holds
//	Negation     the single child does not hold
//
// Trees are immutable once built. Normalise rewrites any tree into
// disjunctive normal form, a *Normalised whose branches are *Branch values
// holding only statements and negations; every negation inside a normal
// form wraps a normal form in turn.
//
// ValidateIsBoundedBy and ValidateScope check that every named variable a
// nested pattern mentions is introduced by the enclosing conjunction.
//
// Construction rules:
//   - a negation directly wrapping a negation is rejected (NewNegation)
//   - disjunctions need at least one child
//   - conjunctions may be empty; they normalise to one empty branch
package pattern
