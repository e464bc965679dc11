package namespace

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"elm-pipeline/internal/common"
)

// Placeholder is the prefix the compiler uses for the project being built.
const Placeholder = "$author$project$"

var ErrInvalidIdentifier = errors.New("invalid package identifier")

// Matcher rewrites one package's compiled prefix to Placeholder.
type Matcher struct {
	identifier string
	prefix     string
	pattern    *regexp.Regexp
}

// Build returns a Matcher for identifier, which must be "author/name".
func Build(identifier string) (*Matcher, error) {
	author, name, ok := common.SplitPackage(identifier)
	if !ok {
		return nil, fmt.Errorf("%q is not of the form author/name: %w", identifier, ErrInvalidIdentifier)
	}

	prefix := "$" + Mangle(author) + "$" + Mangle(name) + "$"
	pattern := regexp.MustCompile(`(?m)(^|[^A-Za-z0-9_$])` + regexp.QuoteMeta(prefix))

	return &Matcher{
		identifier: identifier,
		prefix:     prefix,
		pattern:    pattern,
	}, nil
}

// Mangle maps a package identifier part to the form used in compiled names.
func Mangle(part string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, part)
}

// Identifier returns the package identifier the matcher was built for.
func (m *Matcher) Identifier() string {
	return m.identifier
}

// Prefix returns the compiled prefix the matcher looks for.
func (m *Matcher) Prefix() string {
	return m.prefix
}

// Rewrite replaces every occurrence of the package prefix with Placeholder.
func (m *Matcher) Rewrite(text string) string {
	return m.pattern.ReplaceAllString(text, "${1}"+strings.ReplaceAll(Placeholder, "$", "$$"))
}
