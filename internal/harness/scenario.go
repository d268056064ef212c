package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/typedb/typeql-sub003/internal/pattern"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE spec files to compile and load.
	Specs []string `yaml:"specs"`

	// Queries states expectations per compiled query.
	Queries []QueryExpect `yaml:"queries,omitempty"`

	// Rules states expectations per compiled rule.
	Rules []RuleExpect `yaml:"rules,omitempty"`

	// Assertions are checks across queries and rules.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// QueryExpect is the expected outcome for one query. Unset fields are not
// checked.
type QueryExpect struct {
	Name     string `yaml:"name"`
	Branches *int   `yaml:"branches,omitempty"`
	Members  []int  `yaml:"members,omitempty"`
	// Scope is "ok" or a pattern error code.
	Scope string `yaml:"scope,omitempty"`
}

// RuleExpect is the expected outcome for one rule: valid, or failing with
// a rule error code.
type RuleExpect struct {
	Label string `yaml:"label"`
	Valid *bool  `yaml:"valid,omitempty"`
	Code  string `yaml:"code,omitempty"`
}

// Assertion is a cross-cutting check.
type Assertion struct {
	// Type specifies the assertion type:
	// - "equivalent": the named queries have equal normal forms
	// - "distinct": the named queries have different normal forms
	// - "stored_rules": exactly Count rules were recorded
	Type string `yaml:"type"`

	// Queries names the compared queries (equivalent, distinct).
	Queries []string `yaml:"queries,omitempty"`

	// Count is the expected number of stored rules (stored_rules).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEquivalent = "equivalent"
	AssertDistinct   = "distinct"
	AssertStored     = "stored_rules"
)

// ScopeOK is the scope outcome of a query that passes the scope check.
const ScopeOK = "ok"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "querys:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir in lexical order.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Queries) == 0 && len(s.Rules) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one of queries, rules or assertions is required")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if q.Branches != nil && *q.Branches < 0 {
			return fmt.Errorf("queries[%d]: branches must be non-negative", i)
		}
		if q.Branches != nil && q.Members != nil && len(q.Members) != *q.Branches {
			return fmt.Errorf("queries[%d]: members lists %d branches, branches says %d", i, len(q.Members), *q.Branches)
		}
		switch pattern.ErrorCode(q.Scope) {
		case "", ScopeOK, pattern.CodeVariableOutOfScope, pattern.CodeNoBoundingVariable, pattern.CodeIllegalState:
		default:
			return fmt.Errorf("queries[%d]: unknown scope outcome %q", i, q.Scope)
		}
	}

	for i, r := range s.Rules {
		if r.Label == "" {
			return fmt.Errorf("rules[%d]: label is required", i)
		}
		switch {
		case r.Valid == nil && r.Code == "":
			return fmt.Errorf("rules[%d]: one of valid or code is required", i)
		case r.Valid != nil && *r.Valid && r.Code != "":
			return fmt.Errorf("rules[%d]: valid rule cannot expect code %s", i, r.Code)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEquivalent, AssertDistinct:
		if len(a.Queries) != 2 {
			return fmt.Errorf("assertions[%d]: %s compares exactly two queries", index, a.Type)
		}
	case AssertStored:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stored_rules", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
