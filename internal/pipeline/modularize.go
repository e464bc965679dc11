package pipeline

import (
	"errors"
	"strings"
)

var ErrModularize = errors.New("output is not a compiler IIFE")

const (
	iifeTrailer   = "}(this));"
	moduleTrailer = "}(scope));\nexport const { Elm } = scope;"
	moduleHeader  = "const scope = {};\n"
)

// Modularize turns the compiler's IIFE output into an ES module exporting
// Elm. The last "}(this));" in the text is the IIFE's closing call.
func Modularize(js string) (string, error) {
	i := strings.LastIndex(js, iifeTrailer)
	if i < 0 {
		return "", ErrModularize
	}

	var b strings.Builder

	b.Grow(len(moduleHeader) + len(js) + len(moduleTrailer))
	b.WriteString(moduleHeader)
	b.WriteString(js[:i])
	b.WriteString(moduleTrailer)
	b.WriteString(js[i+len(iifeTrailer):])

	return b.String(), nil
}
