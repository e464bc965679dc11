package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the manifest file name at a project root.
const FileName = "elm.json"

var (
	ErrManifestNotFound     = errors.New("manifest not found")
	ErrManifestFieldMissing = errors.New("manifest field missing")
)

// Manifest is the subset of elm.json used by the pipeline.
type Manifest struct {
	ElmVersion       string        `json:"elm-version"`
	Dependencies     DependencySet `json:"dependencies"`
	TestDependencies DependencySet `json:"test-dependencies"`
}

// DependencySet holds the direct and indirect dependencies of one kind.
type DependencySet struct {
	Direct   Packages `json:"direct"`
	Indirect Packages `json:"indirect"`
}

// All returns direct dependencies followed by indirect ones.
func (d DependencySet) All() Packages {
	all := make(Packages, 0, len(d.Direct)+len(d.Indirect))
	all = append(all, d.Direct...)
	all = append(all, d.Indirect...)

	return all
}

// Package is one installed dependency.
type Package struct {
	// Name is the "author/name" identifier.
	Name string
	// Version is the exact installed version.
	Version string
}

// Packages is a JSON object of name to version that keeps key order.
type Packages []Package

// UnmarshalJSON implements json.Unmarshaler.
func (p *Packages) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*p = nil
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object of package versions, got %v", tok)
	}

	var out Packages

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		var version string
		if err := dec.Decode(&version); err != nil {
			return fmt.Errorf("version of %v: %w", keyTok, err)
		}

		out = append(out, Package{Name: keyTok.(string), Version: version})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out

	return nil
}

// Path returns the manifest path for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, FileName)
}

// Load reads and parses the manifest at the project root.
func Load(projectRoot string) (*Manifest, error) {
	path := Path(projectRoot)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Parse parses elm.json content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if m.ElmVersion == "" {
		return nil, fmt.Errorf(`"elm-version": %w`, ErrManifestFieldMissing)
	}

	return &m, nil
}

// Select returns the dependency set used for a normal or a test build.
func (m *Manifest) Select(test bool) DependencySet {
	if test {
		return m.TestDependencies
	}

	return m.Dependencies
}
