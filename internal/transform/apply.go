package transform

import (
	"fmt"
	"regexp"
	"strings"

	"elm-pipeline/internal/common"
	"elm-pipeline/internal/preprocess"
)

// Rules is a compiled rule set ready to be applied to source text.
type Rules struct {
	pattern      *regexp.Regexp
	replacements map[string]string
	order        []string
}

// Stats reports how often each distinct find text matched during Apply.
type Stats struct {
	// Matches holds the hit count per find text.
	Matches map[string]int
	// Unused lists find texts that never matched, in declaration order.
	Unused []string
}

// Compile preprocesses every replacement with flags and builds the combined
// search pattern. An empty rule set compiles to a no-op.
func Compile(transforms []Transform, flags preprocess.Flags) (*Rules, error) {
	r := &Rules{replacements: make(map[string]string, len(transforms))}

	if common.IsEmpty(transforms) {
		return r, nil
	}

	alternatives := make([]string, 0, len(transforms))

	for i, t := range transforms {
		if t.Find == "" {
			return nil, fmt.Errorf("transform %d has an empty find text", i)
		}

		if _, seen := r.replacements[t.Find]; seen {
			continue
		}

		replacement, err := preprocess.Evaluate(t.Replace, flags)
		if err != nil {
			return nil, fmt.Errorf("transform %d: %w", i, err)
		}

		r.replacements[t.Find] = replacement
		r.order = append(r.order, t.Find)
		alternatives = append(alternatives, regexp.QuoteMeta(t.Find))
	}

	pattern, err := regexp.Compile("(?m)" + strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("compiling transform pattern: %w", err)
	}

	r.pattern = pattern

	return r, nil
}

// Len returns the number of distinct rules.
func (r *Rules) Len() int {
	return len(r.order)
}

// Apply rewrites source in a single pass.
func (r *Rules) Apply(source string) string {
	out, _ := r.ApplyWithStats(source)
	return out
}

// ApplyWithStats is Apply that also reports per-rule match counts.
func (r *Rules) ApplyWithStats(source string) (string, Stats) {
	stats := Stats{Matches: make(map[string]int, len(r.order))}

	if r.pattern == nil {
		return source, stats
	}

	// Compile keeps one alternative per find text, so a match is exactly one
	// rule's find and is counted once.
	out := r.pattern.ReplaceAllStringFunc(source, func(match string) string {
		stats.Matches[match]++
		return r.replacements[match]
	})

	for _, find := range r.order {
		if stats.Matches[find] == 0 {
			stats.Unused = append(stats.Unused, find)
		}
	}

	return out, stats
}

// Apply compiles transforms with flags and applies them to source.
func Apply(source string, transforms []Transform, flags preprocess.Flags) (string, error) {
	rules, err := Compile(transforms, flags)
	if err != nil {
		return "", err
	}

	return rules.Apply(source), nil
}
