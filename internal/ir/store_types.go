package ir

// RuleRecord is the persisted form of a validated rule.
// The JSON columns hold canonical JSON so that Hash can be recomputed from
// a stored row.
type RuleRecord struct {
	Hash        string `json:"hash"`
	ContentHash string `json:"content_hash"` // body and head only
	Label       string `json:"label"`
	When        string `json:"when"`       // canonical JSON of the body
	Then        string `json:"then"`       // canonical JSON of the head
	Normalised  string `json:"normalised"` // canonical JSON of the body's normal form
	Branches    int64  `json:"branches"`
	IRVersion   string `json:"ir_version"`
}
