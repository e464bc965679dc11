package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elm-pipeline/internal/cache"
	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/fixture"
	"elm-pipeline/internal/manifest"
)

// fakeCompiler writes a fixed program to the requested output.
type fakeCompiler struct {
	js    string
	err   error
	calls []CompileArgs
}

func (c *fakeCompiler) Compile(_ context.Context, args CompileArgs) error {
	c.calls = append(c.calls, args)
	if c.err != nil {
		return c.err
	}

	return os.WriteFile(args.Output, []byte(c.js), 0o644)
}

// fakeTool records its calls and tags the text it receives.
type fakeTool struct {
	name    string
	log     *[]string
	configs []string
}

func (f *fakeTool) Run(_ context.Context, input, configFile string) (string, error) {
	*f.log = append(*f.log, f.name)
	f.configs = append(f.configs, configFile)

	return input + "/*" + f.name + "*/", nil
}

type fakeBindings struct {
	log    *[]string
	output string
}

func (f *fakeBindings) Generate(_ context.Context, _ []string, output string) error {
	*f.log = append(*f.log, "bindings")
	f.output = output

	return nil
}

const program = `(function(scope){
'use strict';
var $author$project$Widget$render = function (w) {
	return w;
};
var $elm$core$Basics$identity = function (x) { return x; };
scope['Elm'] = {};
}(this));`

type env struct {
	root string
	home string
	out  string
}

func newEnv(t *testing.T) env {
	t.Helper()

	e := env{root: t.TempDir(), home: t.TempDir()}
	e.out = filepath.Join(e.root, "dist", "main.js")

	widgets := fixture.Dep{Name: "acme/widgets", Version: "1.0.0"}
	fixture.Write(t, manifest.Path(e.root), fixture.Manifest([]fixture.Dep{widgets}, nil, nil))
	fixture.InstallPackage(t, e.home, widgets, fixture.Readme("widgets", [2]string{
		"var $acme$widgets$Widget$render = function (w) {\n    return w;\n};",
		"var $acme$widgets$Widget$render = $elm$core$Basics$identity;",
	}))

	return e
}

func readOutput(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestRunWithoutStepsCompilesDirectly(t *testing.T) {
	e := newEnv(t)
	compiler := &fakeCompiler{js: program}

	r := &Runner{Compiler: compiler}

	res, err := r.Run(context.Background(), Options{
		ProjectRoot: e.root,
		Inputs:      []string{"src/Main.elm"},
		Output:      e.out,
		Debug:       true,
	})
	require.NoError(t, err)

	require.Len(t, compiler.calls, 1)
	assert.Equal(t, e.out, compiler.calls[0].Output)
	assert.True(t, compiler.calls[0].Debug)
	assert.Equal(t, program, readOutput(t, e.out))
	assert.Empty(t, res.Durations)
	assert.NoDirExists(t, filepath.Join(e.root, "elm-stuff"))
}

func TestRunTransformsWithDependencyRules(t *testing.T) {
	e := newEnv(t)

	r := &Runner{
		Compiler: &fakeCompiler{js: program},
		Cache:    cache.New(e.home, nil),
	}

	res, err := r.Run(context.Background(), Options{
		ProjectRoot: e.root,
		Inputs:      []string{"src/Main.elm"},
		Output:      e.out,
		Steps:       NewStepSet(StepTransform),
	})
	require.NoError(t, err)

	out := readOutput(t, e.out)
	assert.Contains(t, out, "var $author$project$Widget$render = $elm$core$Basics$identity;")
	assert.NotContains(t, out, "return w;")
	assert.Equal(t, 1, res.Rules)
	assert.Contains(t, res.Durations, StepTransform)
	assert.FileExists(t, cache.Path(e.root, false))

	// The intermediate file is gone.
	matches, err := filepath.Glob(filepath.Join(e.root, "elm-stuff", "elm-pipeline", "compiled-*.js"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunAppliesConditionalReplacement(t *testing.T) {
	e := newEnv(t)
	fixture.Write(t, filepath.Join(e.root, "README.md"), fixture.Readme("app", [2]string{
		"scope['Elm'] = {};",
		"// @IF debug\nconsole.log('debug build');\n// @END\n// @UNLESS test\nscope['Elm'] = {};\n// @END",
	}))

	run := func(opts Options) string {
		opts.ProjectRoot = e.root
		opts.Output = e.out
		opts.Steps = NewStepSet(StepTransform)

		r := &Runner{Compiler: &fakeCompiler{js: program}, Cache: cache.New(e.home, nil)}
		_, err := r.Run(context.Background(), opts)
		require.NoError(t, err)

		return readOutput(t, e.out)
	}

	debug := run(Options{Debug: true})
	assert.Contains(t, debug, "console.log('debug build');\nscope['Elm'] = {};")

	plain := run(Options{})
	assert.NotContains(t, plain, "console.log")
	assert.Contains(t, plain, "scope['Elm'] = {};")
}

func TestRunStepOrder(t *testing.T) {
	e := newEnv(t)

	var log []string

	optimizer := &fakeTool{name: "optimize", log: &log}
	minifier := &fakeTool{name: "minify", log: &log}
	bindings := &fakeBindings{log: &log}

	r := &Runner{
		Compiler:  &fakeCompiler{js: program},
		Optimizer: optimizer,
		Minifier:  minifier,
		Bindings:  bindings,
		Cache:     cache.New(e.home, nil),
	}

	res, err := r.Run(context.Background(), Options{
		ProjectRoot: e.root,
		Output:      e.out,
		Steps:       NewStepSet(AllSteps()...),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bindings", "optimize", "minify"}, log)
	assert.Equal(t, e.out, bindings.output)
	assert.Len(t, res.Durations, 5)

	out := readOutput(t, e.out)
	assert.True(t, strings.HasPrefix(out, "const scope = {};\n"))
	assert.True(t, strings.HasSuffix(out, "export const { Elm } = scope;/*optimize*//*minify*/"))
}

func TestRunMinifierConfig(t *testing.T) {
	e := newEnv(t)

	var log []string

	minifier := &fakeTool{name: "minify", log: &log}
	r := &Runner{Compiler: &fakeCompiler{js: program}, Minifier: minifier}

	opts := Options{
		ProjectRoot:    e.root,
		Output:         e.out,
		Steps:          NewStepSet(StepMinify),
		MinifierConfig: "terser.json",
	}

	res, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, minifier.configs)
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeToolConfigMissing, res.Diagnostics.Warnings[0].Code)

	fixture.Write(t, filepath.Join(e.root, "terser.json"), "{}")

	_, err = r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.root, "terser.json"), minifier.configs[1])
}

func TestRunErrors(t *testing.T) {
	t.Run("compiler failure", func(t *testing.T) {
		e := newEnv(t)
		compiler := &fakeCompiler{err: ErrCompilerFailed}

		r := &Runner{Compiler: compiler, Cache: cache.New(e.home, nil)}
		_, err := r.Run(context.Background(), Options{
			ProjectRoot: e.root,
			Output:      e.out,
			Steps:       NewStepSet(StepTransform),
		})
		require.ErrorIs(t, err, ErrCompilerFailed)
		assert.NoFileExists(t, e.out)
	})

	t.Run("step without tool", func(t *testing.T) {
		r := &Runner{Compiler: &fakeCompiler{}}
		_, err := r.Run(context.Background(), Options{Steps: NewStepSet(StepOptimize)})
		require.ErrorIs(t, err, ErrToolNotConfigured)
	})

	t.Run("no compiler", func(t *testing.T) {
		_, err := (&Runner{}).Run(context.Background(), Options{})
		require.ErrorIs(t, err, ErrToolNotConfigured)
	})

	t.Run("modularize on non-IIFE output", func(t *testing.T) {
		e := newEnv(t)
		r := &Runner{Compiler: &fakeCompiler{js: "export {};"}}

		_, err := r.Run(context.Background(), Options{
			ProjectRoot: e.root,
			Output:      e.out,
			Steps:       NewStepSet(StepModularize),
		})
		require.ErrorIs(t, err, ErrModularize)
	})

	t.Run("manifest missing during transform", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, os.Remove(manifest.Path(e.root)))

		r := &Runner{Compiler: &fakeCompiler{js: program}, Cache: cache.New(e.home, nil)}
		_, err := r.Run(context.Background(), Options{
			ProjectRoot: e.root,
			Output:      e.out,
			Steps:       NewStepSet(StepTransform),
		})
		require.ErrorIs(t, err, manifest.ErrManifestNotFound)
		assert.True(t, errors.Is(err, manifest.ErrManifestNotFound))
	})
}

func TestRunWarnsAboutUnusedRules(t *testing.T) {
	e := newEnv(t)
	fixture.Write(t, filepath.Join(e.root, "README.md"), fixture.Readme("app", [2]string{
		"var $author$project$Missing = 1;\nvar more;",
		"var $author$project$Missing = 2;",
	}))

	r := &Runner{Compiler: &fakeCompiler{js: program}, Cache: cache.New(e.home, nil)}

	res, err := r.Run(context.Background(), Options{
		ProjectRoot: e.root,
		Output:      e.out,
		Steps:       NewStepSet(StepTransform),
	})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeRuleUnused, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "rule did not match: var $author$project$Missing = 1; …", res.Diagnostics.Warnings[0].Message)
	assert.Equal(t, 2, res.Rules)
}
