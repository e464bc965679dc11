package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"elm-pipeline/internal/cache"
	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/preprocess"
	"elm-pipeline/internal/transform"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options describes one build.
type Options struct {
	// ProjectRoot is the directory holding elm.json.
	ProjectRoot string
	// Inputs are the Elm entry modules, relative to ProjectRoot.
	Inputs []string
	// Output is the final JavaScript path.
	Output string
	// Debug and Optimize are passed to the compiler and exposed to
	// conditional blocks in replacement text.
	Debug    bool
	Optimize bool
	Report   string
	Docs     string
	// Steps selects the post-processing steps.
	Steps StepSet
	// Test selects the test-dependency rule set and sets the "test" flag.
	Test bool
	// ForceRefresh recollects rules even when the cache is fresh.
	ForceRefresh bool
	// MinifierConfig is an optional minifier configuration file.
	MinifierConfig string
}

// Flags returns the conditional flags for the build.
func (o Options) Flags() preprocess.Flags {
	return preprocess.Flags{
		preprocess.FlagDebug:    o.Debug,
		preprocess.FlagTest:     o.Test,
		preprocess.FlagOptimize: o.Optimize,
	}
}

// Result reports what a build did.
type Result struct {
	Output string
	// Compile is the time spent in the compiler.
	Compile time.Duration
	// Durations holds the time spent in each step that ran.
	Durations map[Step]time.Duration
	// Rules is the number of distinct transformation rules applied.
	Rules       int
	Diagnostics diagnostic.Diagnostics
}

// Runner wires the external collaborators of a build.
type Runner struct {
	Compiler  Compiler
	Optimizer TextTool
	Minifier  TextTool
	Bindings  BindingGenerator
	Cache     *cache.Cache
	Logger    *slog.Logger
}

// build is the state of one Run.
type build struct {
	*Runner
	opts   Options
	result *Result
}

// Run compiles and post-processes according to opts.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := r.check(opts.Steps); err != nil {
		return nil, err
	}

	b := &build{
		Runner: r,
		opts:   opts,
		result: &Result{Output: opts.Output, Durations: make(map[Step]time.Duration)},
	}

	if opts.Steps.Empty() {
		b.result.Diagnostics.AddInfo(diagnostic.CodeNoPostProcessSteps, "compiler output written directly", "", opts.Output)

		if err := b.compile(ctx, opts.Output); err != nil {
			return nil, err
		}

		return b.result, nil
	}

	return b.postProcess(ctx)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

// check rejects requested steps that have no collaborator.
func (r *Runner) check(steps StepSet) error {
	missing := map[Step]bool{
		StepTransform: r.Cache == nil,
		StepBindings:  r.Bindings == nil,
		StepOptimize:  r.Optimizer == nil,
		StepMinify:    r.Minifier == nil,
	}

	for _, s := range steps.Steps() {
		if missing[s] {
			return fmt.Errorf("%s: %w", s, ErrToolNotConfigured)
		}
	}

	if r.Compiler == nil {
		return fmt.Errorf("compiler: %w", ErrToolNotConfigured)
	}

	return nil
}

func (b *build) compile(ctx context.Context, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	start := time.Now()

	err := b.Compiler.Compile(ctx, CompileArgs{
		Inputs:   b.opts.Inputs,
		Output:   output,
		Debug:    b.opts.Debug,
		Optimize: b.opts.Optimize,
		Report:   b.opts.Report,
		Docs:     b.opts.Docs,
	})

	b.result.Compile = time.Since(start)

	return err
}

func (b *build) postProcess(ctx context.Context) (*Result, error) {
	dir := filepath.Join(b.opts.ProjectRoot, filepath.FromSlash(cache.Dir))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating intermediate directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "compiled-*.js")
	if err != nil {
		return nil, fmt.Errorf("creating intermediate file: %w", err)
	}

	tmp.Close()

	intermediate, err := filepath.Abs(tmp.Name())
	if err != nil {
		return nil, err
	}

	defer os.Remove(intermediate)

	if err := b.compile(ctx, intermediate); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(intermediate)
	if err != nil {
		return nil, fmt.Errorf("reading compiler output: %w", err)
	}

	js := string(data)

	for _, step := range b.opts.Steps.Steps() {
		start := time.Now()

		js, err = b.run(ctx, step, js)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step, err)
		}

		b.result.Durations[step] = time.Since(start)
		b.logger().Debug("step finished",
			slog.String("step", step.String()),
			slog.Duration("took", b.result.Durations[step]))
	}

	if err := os.MkdirAll(filepath.Dir(b.opts.Output), dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(b.opts.Output, []byte(js), filePerm); err != nil {
		return nil, fmt.Errorf("writing %s: %w", b.opts.Output, err)
	}

	return b.result, nil
}

func (b *build) run(ctx context.Context, step Step, js string) (string, error) {
	switch step {
	case StepTransform:
		return b.transform(js)
	case StepModularize:
		return Modularize(js)
	case StepBindings:
		return js, b.Bindings.Generate(ctx, b.opts.Inputs, b.opts.Output)
	case StepOptimize:
		return b.Optimizer.Run(ctx, js, "")
	case StepMinify:
		return b.Minifier.Run(ctx, js, b.minifierConfig())
	default:
		return "", fmt.Errorf("unhandled step %s", step)
	}
}

func (b *build) transform(js string) (string, error) {
	transforms, err := b.Cache.GetOrRefresh(b.opts.ProjectRoot, b.opts.Test, b.opts.ForceRefresh, &b.result.Diagnostics)
	if err != nil {
		return "", err
	}

	rules, err := transform.Compile(transforms, b.opts.Flags())
	if err != nil {
		return "", err
	}

	out, stats := rules.ApplyWithStats(js)

	b.result.Rules = rules.Len()

	for _, find := range stats.Unused {
		b.result.Diagnostics.AddWarning(diagnostic.CodeRuleUnused, "rule did not match: "+firstLine(find), "", "")
	}

	b.logger().Debug("applied transforms",
		slog.Int("rules", rules.Len()),
		slog.Int("unused", len(stats.Unused)))

	return out, nil
}

// minifierConfig returns the configuration file to pass, or "" when none is
// set or the file does not exist.
func (b *build) minifierConfig() string {
	path := b.opts.MinifierConfig
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(b.opts.ProjectRoot, path)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		b.result.Diagnostics.AddWarning(diagnostic.CodeToolConfigMissing, "minifier config not found, using defaults", "", path)
		return ""
	}

	return path
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
	}

	return s
}
