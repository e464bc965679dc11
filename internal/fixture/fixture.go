// Package fixture builds Elm projects and package caches on disk for tests.
package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Anchor must match readme.Anchor; it is repeated here so that fixture has
// no dependency on the package under test.
const Anchor = "#elm-pipeline-transforms-5f0c5d9e-2a7b-4f0e-9a4d-1c3b7e8f6a21"

// ElmVersion is the compiler version written into generated manifests.
const ElmVersion = "0.19.1"

// Dep is a dependency entry for Manifest.
type Dep struct {
	Name    string
	Version string
}

// Manifest renders an application elm.json.
func Manifest(direct, indirect, testDirect []Dep) string {
	return `{
    "type": "application",
    "source-directories": ["src"],
    "elm-version": "` + ElmVersion + `",
    "dependencies": {
        "direct": ` + depObject(direct) + `,
        "indirect": ` + depObject(indirect) + `
    },
    "test-dependencies": {
        "direct": ` + depObject(testDirect) + `,
        "indirect": {}
    }
}
`
}

func depObject(deps []Dep) string {
	parts := make([]string, 0, len(deps))
	for _, d := range deps {
		parts = append(parts, `"`+d.Name+`": "`+d.Version+`"`)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Readme renders a README with a rule section holding the given find/replace
// pairs.
func Readme(title string, pairs ...[2]string) string {
	var b strings.Builder

	b.WriteString("# " + title + "\n\n")
	b.WriteString("Rules for [elm-pipeline](" + Anchor + ").\n\n")

	for _, p := range pairs {
		b.WriteString("```js\n" + p[0] + "\n```\n\n")
		b.WriteString("```js\n" + p[1] + "\n```\n\n")
	}

	b.WriteString("## License\n\nBSD-3-Clause\n")

	return b.String()
}

// Write creates path (and its parents) with content.
func Write(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// InstallPackage writes a dependency README into the package cache.
func InstallPackage(t *testing.T, elmHome string, dep Dep, readme string) string {
	t.Helper()

	path := filepath.Join(elmHome, ElmVersion, "packages", filepath.FromSlash(dep.Name), dep.Version, "README.md")
	Write(t, path, readme)

	return path
}
