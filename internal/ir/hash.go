package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep pattern and rule hashes in disjoint spaces.
const (
	DomainPattern     = "typeql/pattern/v1"
	DomainRule        = "typeql/rule/v1"
	DomainRuleContent = "typeql/rule-content/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PatternHash hashes the encoded form of a pattern tree.
func PatternHash(encoded IRObject) (string, error) {
	canonical, err := MarshalCanonical(encoded)
	if err != nil {
		return "", fmt.Errorf("PatternHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPattern, canonical), nil
}

// RuleHash hashes a rule by label, body and head. The normal form is
// derived from the body and is not part of the hash.
func RuleHash(label string, when, then IRObject) (string, error) {
	obj := IRObject{
		"label": IRString(label),
		"when":  when,
		"then":  then,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RuleHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRule, canonical), nil
}

// RuleContentHash hashes a rule's body and head without its label, so the
// same rule under two labels has one content hash.
func RuleContentHash(when, then IRObject) (string, error) {
	canonical, err := MarshalCanonical(IRObject{"when": when, "then": then})
	if err != nil {
		return "", fmt.Errorf("RuleContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRuleContent, canonical), nil
}

// MustPatternHash is like PatternHash but panics on error.
func MustPatternHash(encoded IRObject) string {
	h, err := PatternHash(encoded)
	if err != nil {
		panic(err)
	}
	return h
}

// MustRuleHash is like RuleHash but panics on error.
func MustRuleHash(label string, when, then IRObject) string {
	h, err := RuleHash(label, when, then)
	if err != nil {
		panic(err)
	}
	return h
}
