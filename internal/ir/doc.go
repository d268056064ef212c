// Package ir holds the canonical value model shared by the pattern, rule and
// store packages.
//
// Every pattern tree and rule can be lowered to an IRObject. The canonical
// JSON form of that object is the only input to content hashing, so two
// structurally equal trees always hash alike.
//
// Constraints on the model:
//   - no floats; numeric literals are int64
//   - no null; absent fields are omitted
//   - JSON keys are snake_case
//
// ir imports nothing internal.
package ir
