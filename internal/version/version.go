// Package version holds the release version stamped into the triage binary.
package version

// Current is the release version without a "v" prefix.
const Current = "0.1.0"
