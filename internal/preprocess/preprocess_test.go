package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNested(t *testing.T) {
	input := "// @IF debug\nA\n// @UNLESS test\nB\n// @END\n// @END"

	got, err := Evaluate(input, Flags{FlagDebug: true, FlagTest: false})
	require.NoError(t, err)
	assert.Equal(t, "A\nB", got)

	got, err = Evaluate(input, Flags{FlagDebug: true, FlagTest: true})
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	got, err = Evaluate(input, Flags{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		flags    Flags
		expected string
	}{
		{
			name:     "no markers",
			input:    "var a = 1;\nvar b = 2;",
			expected: "var a = 1;\nvar b = 2;",
		},
		{
			name:     "strips one tab per level",
			input:    "x\n\t// @IF debug\n\t\tlog();\n\t// @END\ny",
			flags:    Flags{FlagDebug: true},
			expected: "x\n\tlog();\ny",
		},
		{
			name:     "strips only available tabs",
			input:    "// @IF debug\n// @IF test\n\tz\n// @END\n// @END",
			flags:    Flags{FlagDebug: true, FlagTest: true},
			expected: "z",
		},
		{
			name:     "unless on missing flag holds",
			input:    "// @UNLESS optimize\ncheck();\n// @END",
			expected: "check();",
		},
		{
			name:     "unknown flag is false",
			input:    "// @IF nosuchflag\ngone\n// @END\nkept",
			flags:    Flags{FlagDebug: true},
			expected: "kept",
		},
		{
			name:     "ordinary comments are content",
			input:    "// plain comment\n// @IFFY not a marker",
			expected: "// plain comment\n// @IFFY not a marker",
		},
		{
			name:     "marker without space after slashes",
			input:    "//@IF debug\na\n//@END",
			flags:    Flags{FlagDebug: true},
			expected: "a",
		},
		{
			name:     "sibling blocks",
			input:    "// @IF debug\na\n// @END\n// @IF test\nb\n// @END",
			flags:    Flags{FlagTest: true},
			expected: "b",
		},
		{
			name:     "trailing newline kept",
			input:    "a\n",
			expected: "a\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.input, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"end without open", "a\n// @END", ErrUnbalancedConditional},
		{"unclosed block", "// @IF debug\na", ErrUnbalancedConditional},
		{"if without flag", "// @IF\na\n// @END", ErrMalformedMarker},
		{"unless with two flags", "// @UNLESS a b\n// @END", ErrMalformedMarker},
		{"end with argument", "// @IF a\n// @END a", ErrMalformedMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.input, Flags{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
