// Package harness provides conformance testing for TypeQL pattern specs.
//
// A scenario names CUE spec files and states what their queries and rules
// must normalise and validate to. The harness compiles the specs, runs the
// normaliser, the scope check and the rule validator, records every valid
// rule in a throwaway in-memory store, and compares the outcome with the
// scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - path/to/queries.cue
//	  - path/to/rules.cue
//	queries:
//	  - name: adults
//	    branches: 2          # normal-form branch count
//	    members: [2, 3]      # members per branch, in order
//	    scope: ok            # or VARIABLE_OUT_OF_SCOPE, NO_BOUNDING_VARIABLE
//	rules:
//	  - label: people-have-names
//	    valid: true
//	  - label: choose
//	    code: E203           # expected validation error code
//	assertions:
//	  - type: equivalent
//	    queries: [adults, grown-ups]
//	  - type: stored_rules
//	    count: 1
//
// Spec paths are relative to the scenario file when loaded with
// LoadScenarioWithBasePath.
//
// # Determinism
//
// Anonymous variables are numbered from a fresh sequence per run, so the
// canonical JSON written to golden files is stable across runs.
//
// # Golden Files
//
// RunWithGolden compares a snapshot of every normal form and rule outcome
// against testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
