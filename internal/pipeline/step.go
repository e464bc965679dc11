package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"elm-pipeline/internal/suggest"
)

//go:generate go tool stringer -type=Step -linecomment -output=step_string.go

// Step is a post-processing step.
type Step int

const (
	StepTransform  Step = iota // transform
	StepModularize             // modularize
	StepBindings               // bindings
	StepOptimize               // optimize
	StepMinify                 // minify

	// stepCount is the number of defined steps.
	stepCount = int(iota)
)

// AllSteps lists every step in execution order.
func AllSteps() []Step {
	steps := make([]Step, 0, stepCount)
	for i := range stepCount {
		steps = append(steps, Step(i))
	}

	return steps
}

// ParseStep maps a step name to its Step.
func ParseStep(name string) (Step, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	names := make([]string, 0, stepCount)
	for _, s := range AllSteps() {
		if s.String() == normalized {
			return s, nil
		}

		names = append(names, s.String())
	}

	if hint, ok := suggest.Closest(normalized, names); ok {
		return 0, fmt.Errorf("unknown step %q, did you mean %q?", name, hint)
	}

	return 0, fmt.Errorf("unknown step %q", name)
}

// ParseSteps parses a list of step names.
func ParseSteps(names []string) (StepSet, error) {
	var set StepSet

	for _, name := range names {
		s, err := ParseStep(name)
		if err != nil {
			return 0, err
		}

		set = set.With(s)
	}

	return set, nil
}

// StepSet is a set of steps.
type StepSet uint8

// NewStepSet returns a set holding steps.
func NewStepSet(steps ...Step) StepSet {
	var set StepSet
	for _, s := range steps {
		set = set.With(s)
	}

	return set
}

// With returns the set with s added.
func (set StepSet) With(s Step) StepSet {
	return set | 1<<uint(s)
}

// Has reports whether s is in the set.
func (set StepSet) Has(s Step) bool {
	return set&(1<<uint(s)) != 0
}

// Empty reports whether no step is selected.
func (set StepSet) Empty() bool {
	return set == 0
}

// Steps returns the selected steps in execution order.
func (set StepSet) Steps() []Step {
	return slices.DeleteFunc(AllSteps(), func(s Step) bool { return !set.Has(s) })
}

// String joins the selected step names with commas.
func (set StepSet) String() string {
	names := make([]string, 0, stepCount)
	for _, s := range set.Steps() {
		names = append(names, s.String())
	}

	return strings.Join(names, ",")
}
