package ir

const (
	// IRVersion is the version of the canonical encoding. Bump it whenever
	// the shape produced by pattern.Encode changes, since stored hashes
	// depend on it.
	IRVersion = "1"

	// ToolVersion is reported by the CLI.
	ToolVersion = "0.1.0"
)
