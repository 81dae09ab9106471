package ir

// Version constants for the log format and the tool.
const (
	// FormatVersion is the log file format version.
	FormatVersion = "1"

	// ToolVersion is the statuslog version.
	ToolVersion = "0.1.0"
)
