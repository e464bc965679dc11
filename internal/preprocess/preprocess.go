package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"elm-pipeline/internal/common"
)

// Well-known flag names.
const (
	FlagDebug    = "debug"
	FlagTest     = "test"
	FlagOptimize = "optimize"
)

const (
	commentPrefix = "//"
	indentUnit    = "\t"
)

var (
	ErrUnbalancedConditional = errors.New("unbalanced conditional block")
	ErrMalformedMarker       = errors.New("malformed conditional marker")
)

// Flags maps flag names to their values for the current build.
// A name that is absent is false.
type Flags map[string]bool

// scope is one open @IF/@UNLESS block.
type scope struct {
	flag string
	want bool
	line int
}

func (s scope) holds(flags Flags) bool {
	return flags[s.flag] == s.want
}

type markerKind int

const (
	markerNone markerKind = iota
	markerIf
	markerUnless
	markerEnd
)

// Evaluate returns text with every conditional block resolved against flags.
func Evaluate(text string, flags Flags) (string, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var stack []scope

	for i, line := range lines {
		kind, flag, err := parseMarker(line)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}

		switch kind {
		case markerIf, markerUnless:
			stack = append(stack, scope{flag: flag, want: kind == markerIf, line: i + 1})
		case markerEnd:
			if common.IsEmpty(stack) {
				return "", fmt.Errorf("line %d: @END without open block: %w", i+1, ErrUnbalancedConditional)
			}

			stack = stack[:len(stack)-1]
		case markerNone:
			if included(stack, flags) {
				out = append(out, stripIndent(line, len(stack)))
			}
		}
	}

	if open, ok := common.Last(stack); ok {
		return "", fmt.Errorf("line %d: block on %q is never closed: %w", open.line, open.flag, ErrUnbalancedConditional)
	}

	return strings.Join(out, "\n"), nil
}

// included is the conjunction of all open scopes.
func included(stack []scope, flags Flags) bool {
	for _, s := range stack {
		if !s.holds(flags) {
			return false
		}
	}

	return true
}

// stripIndent removes up to depth leading indent units.
func stripIndent(line string, depth int) string {
	for range depth {
		trimmed, ok := strings.CutPrefix(line, indentUnit)
		if !ok {
			break
		}

		line = trimmed
	}

	return line
}

// parseMarker recognizes "// @IF flag", "// @UNLESS flag" and "// @END",
// with any leading whitespace.
func parseMarker(line string) (markerKind, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), commentPrefix)
	if !ok {
		return markerNone, "", nil
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return markerNone, "", nil
	}

	var kind markerKind

	switch fields[0] {
	case "@IF":
		kind = markerIf
	case "@UNLESS":
		kind = markerUnless
	case "@END":
		if len(fields) != 1 {
			return markerNone, "", fmt.Errorf("%q takes no argument: %w", strings.TrimSpace(line), ErrMalformedMarker)
		}

		return markerEnd, "", nil
	default:
		return markerNone, "", nil
	}

	if len(fields) != 2 {
		return markerNone, "", fmt.Errorf("%q needs exactly one flag name: %w", strings.TrimSpace(line), ErrMalformedMarker)
	}

	return kind, fields[1], nil
}
