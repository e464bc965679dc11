package transform

import (
	"regexp"
)

// IndentUnit is the indentation the Elm compiler emits.
const IndentUnit = "\t"

// indentWidth is the number of spaces that normalize to one IndentUnit.
const indentWidth = 4

var leadingSpaces = regexp.MustCompile(`(?m)^(\t*) {4}`)

// Transform is a single literal rewrite rule.
type Transform struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// Normalize converts leading runs of four spaces into tabs, repeatedly, so
// snippets written with spaces line up with compiler output indented by tabs.
func Normalize(text string) string {
	for {
		next := leadingSpaces.ReplaceAllString(text, "${1}"+IndentUnit)
		if next == text {
			return next
		}

		text = next
	}
}
