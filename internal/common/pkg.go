package common

import "strings"

// UnknownStr is the display value for enum values outside their range.
const UnknownStr = "unknown"

// SplitPackage splits an Elm package identifier of the form "author/name".
// It reports false unless there are exactly two non-empty parts.
func SplitPackage(identifier string) (author, name string, ok bool) {
	parts := strings.Split(identifier, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
