package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"elm-pipeline/internal/collect"
	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/manifest"
	"elm-pipeline/internal/transform"
)

// Dir is the cache directory relative to a project root.
const Dir = "elm-stuff/elm-pipeline"

const (
	normalFile = "transforms.json"
	testFile   = "transforms-test.json"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// memoSize bounds the number of decoded artifacts kept in memory.
const memoSize = 64

// Cache loads and refreshes rule artifacts.
type Cache struct {
	elmHome string
	walker  *collect.Walker
	logger  *slog.Logger
	memo    *lru.Cache[string, memoEntry]
}

type memoEntry struct {
	stamp      stamp
	transforms []transform.Transform
}

// stamp identifies one version of an artifact. Size catches rewrites that
// land within the filesystem's mtime granularity.
type stamp struct {
	modTime time.Time
	size    int64
}

func (s stamp) equal(other stamp) bool {
	return s.size == other.size && s.modTime.Equal(other.modTime)
}

// New creates a Cache that collects from the package cache at elmHome.
// logger may be nil.
func New(elmHome string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	memo, err := lru.New[string, memoEntry](memoSize)
	if err != nil {
		panic(err)
	}

	return &Cache{
		elmHome: elmHome,
		walker:  collect.NewWalker(logger),
		logger:  logger,
		memo:    memo,
	}
}

// Path returns the artifact path for a project and mode.
func Path(projectRoot string, test bool) string {
	name := normalFile
	if test {
		name = testFile
	}

	return filepath.Join(projectRoot, filepath.FromSlash(Dir), name)
}

// GetOrRefresh returns the project's rules, recollecting them when the
// artifact is stale or force is set. diags may be nil.
func (c *Cache) GetOrRefresh(projectRoot string, test, force bool, diags *diagnostic.Diagnostics) ([]transform.Transform, error) {
	path := Path(projectRoot, test)

	artifact, hasArtifact := statArtifact(path)

	if !force && hasArtifact && !sourcesNewerThan(projectRoot, artifact.modTime) {
		if entry, ok := c.memo.Get(path); ok && entry.stamp.equal(artifact) {
			return entry.transforms, nil
		}

		transforms, err := Read(path)
		if err != nil {
			return nil, err
		}

		c.memo.Add(path, memoEntry{stamp: artifact, transforms: transforms})
		c.logger.Debug("transform cache hit", slog.String("path", path), slog.Int("count", len(transforms)))

		return transforms, nil
	}

	transforms, err := c.walker.Collect(collect.Options{
		ProjectRoot: projectRoot,
		ElmHome:     c.elmHome,
		Test:        test,
		Diagnostics: diags,
	})
	if err != nil {
		return nil, err
	}

	if err := Write(path, transforms); err != nil {
		return nil, err
	}

	if written, ok := statArtifact(path); ok {
		c.memo.Add(path, memoEntry{stamp: written, transforms: transforms})
	}

	if diags != nil {
		diags.AddInfo(diagnostic.CodeCacheRefreshed, fmt.Sprintf("%d rules cached", len(transforms)), "", path)
	}

	c.logger.Debug("transform cache refreshed",
		slog.String("path", path),
		slog.Bool("forced", force),
		slog.Int("count", len(transforms)))

	return transforms, nil
}

// Invalidate removes both artifacts of a project. Missing artifacts are not
// an error.
func (c *Cache) Invalidate(projectRoot string) error {
	for _, test := range []bool{false, true} {
		path := Path(projectRoot, test)
		c.memo.Remove(path)

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	return nil
}

// sourcesNewerThan reports whether elm.json or README.md changed after t.
// A missing source counts as infinitely new.
func sourcesNewerThan(projectRoot string, t time.Time) bool {
	for _, src := range []string{
		manifest.Path(projectRoot),
		filepath.Join(projectRoot, collect.ReadmeFile),
	} {
		mt, ok := modTime(src)
		if !ok || mt.After(t) {
			return true
		}
	}

	return false
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}

	return info.ModTime(), true
}

func statArtifact(path string) (stamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}, false
	}

	return stamp{modTime: info.ModTime(), size: info.Size()}, true
}

// Read decodes an artifact.
func Read(path string) ([]transform.Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transform cache %s: %w", path, err)
	}

	var transforms []transform.Transform
	if err := json.Unmarshal(data, &transforms); err != nil {
		return nil, fmt.Errorf("failed to parse transform cache %s: %w", path, err)
	}

	return transforms, nil
}

// Write stores transforms at path, replacing any previous artifact.
func Write(path string, transforms []transform.Transform) error {
	if transforms == nil {
		transforms = []transform.Transform{}
	}

	data, err := json.Marshal(transforms)
	if err != nil {
		return fmt.Errorf("failed to marshal transforms: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache file %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache file %s: %w", path, err)
	}

	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return fmt.Errorf("writing cache file %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing cache file %s: %w", path, err)
	}

	return nil
}
