package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/manifest"
	"elm-pipeline/internal/namespace"
	"elm-pipeline/internal/readme"
	"elm-pipeline/internal/transform"
)

// ReadmeFile is the documentation file name looked up in every package.
const ReadmeFile = "README.md"

// defaultMemoSize bounds the number of dependency READMEs kept in memory.
const defaultMemoSize = 256

// Options controls one collection pass.
type Options struct {
	// ProjectRoot is the directory holding elm.json.
	ProjectRoot string
	// ElmHome is the Elm package cache root (usually ~/.elm).
	ElmHome string
	// Test selects test-dependencies instead of dependencies.
	Test bool
	// Diagnostics receives non-fatal findings. May be nil.
	Diagnostics *diagnostic.Diagnostics
}

// Walker collects rules. Installed package READMEs never change for a given
// version, so their scans are memoized across calls.
type Walker struct {
	logger *slog.Logger
	memo   *lru.Cache[string, memoEntry]
}

type memoEntry struct {
	modTime    time.Time
	transforms []transform.Transform
}

// NewWalker creates a Walker. logger may be nil.
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}

	memo, err := lru.New[string, memoEntry](defaultMemoSize)
	if err != nil {
		panic(err)
	}

	return &Walker{logger: logger, memo: memo}
}

// Collect returns the project's rules followed by its dependencies' rules.
func Collect(opts Options) ([]transform.Transform, error) {
	return NewWalker(nil).Collect(opts)
}

// ReadmePath returns where the Elm compiler installs a package's README.
func ReadmePath(elmHome, elmVersion string, pkg manifest.Package) string {
	return filepath.Join(elmHome, elmVersion, "packages", filepath.FromSlash(pkg.Name), pkg.Version, ReadmeFile)
}

// Collect returns the project's rules followed by its dependencies' rules.
func (w *Walker) Collect(opts Options) ([]transform.Transform, error) {
	m, err := manifest.Load(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	diags := opts.Diagnostics
	if diags == nil {
		diags = &diagnostic.Diagnostics{}
	}

	ownPath := filepath.Join(opts.ProjectRoot, ReadmeFile)

	transforms, err := w.scanOptional(ownPath, "", nil, diags)
	if err != nil {
		return nil, err
	}

	for _, pkg := range m.Select(opts.Test).All() {
		matcher, err := namespace.Build(pkg.Name)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", pkg.Name, err)
		}

		path := ReadmePath(opts.ElmHome, m.ElmVersion, pkg)

		found, err := w.scanDependency(path, pkg.Name, matcher, diags)
		if err != nil {
			return nil, err
		}

		transforms = append(transforms, found...)
	}

	w.logger.Debug("collected transforms",
		slog.String("project", opts.ProjectRoot),
		slog.Bool("test", opts.Test),
		slog.Int("count", len(transforms)))

	return transforms, nil
}

// scanDependency scans an installed README, reusing an earlier scan when
// the file has not changed since.
func (w *Walker) scanDependency(path, pkg string, matcher *namespace.Matcher, diags *diagnostic.Diagnostics) ([]transform.Transform, error) {
	info, err := os.Stat(path)
	if err != nil {
		return w.scanOptional(path, pkg, matcher, diags)
	}

	if entry, ok := w.memo.Get(path); ok && entry.modTime.Equal(info.ModTime()) {
		reportLoaded(diags, pkg, path, len(entry.transforms))
		return entry.transforms, nil
	}

	found, err := w.scanOptional(path, pkg, matcher, diags)
	if err != nil {
		return nil, err
	}

	w.memo.Add(path, memoEntry{modTime: info.ModTime(), transforms: found})

	return found, nil
}

// scanOptional scans path, treating a missing file as zero rules.
func (w *Walker) scanOptional(path, pkg string, rewriter readme.Rewriter, diags *diagnostic.Diagnostics) ([]transform.Transform, error) {
	found, err := readme.ScanFile(path, rewriter)
	if errors.Is(err, fs.ErrNotExist) {
		diags.AddInfo(diagnostic.CodeReadmeMissing, "no README, no rules", pkg, path)
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	reportLoaded(diags, pkg, path, len(found))

	return found, nil
}

func reportLoaded(diags *diagnostic.Diagnostics, pkg, path string, n int) {
	if n == 0 {
		return
	}

	diags.AddInfo(diagnostic.CodeRulesLoaded, strconv.Itoa(n)+" rules", pkg, path)
}
