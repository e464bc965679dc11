// Package main provides the CLI entrypoint for elm-pipeline.
//
// elm-pipeline wraps the Elm compiler:
//   - Compiles Elm entry modules to JavaScript with `elm make`
//   - Rewrites the output with find/replace rules collected from the
//     project's README and the READMEs of its installed dependencies
//   - Optionally turns the output into an ES module, generates bindings,
//     and runs an optimizer and a minifier
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"elm-pipeline/internal/cache"
	"elm-pipeline/internal/config"
	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/pipeline"
)

const usage = `usage: elm-pipeline <command> [flags]

Commands:
  make [flags] [inputs...]   compile and post-process
  rules [flags]              show the collected transformation rules
  clean [flags]              remove cached rules
  init [flags]               write a default ` + config.FileName + `

Run "elm-pipeline <command> -h" for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error

	switch args[0] {
	case "make":
		err = runMake(ctx, args[1:], stdout, stderr)
	case "rules":
		err = runRules(args[1:], stdout, stderr)
	case "clean":
		err = runClean(args[1:], stderr)
	case "init":
		err = runInit(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "elm-pipeline: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "elm-pipeline: %v\n", err)
		return 1
	}

	return 0
}

// session is the state resolved once per invocation.
type session struct {
	root   string
	cfg    *config.Config
	env    config.Env
	logger *slog.Logger
}

func openSession(project string, verbose bool, stderr io.Writer) (*session, error) {
	root, err := filepath.Abs(project)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	env, err := config.LoadEnv(root)
	if err != nil {
		return nil, err
	}

	if env.Compiler != "" {
		cfg.Compiler.Command = env.Compiler
	}

	level := parseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return &session{root: root, cfg: cfg, env: env, logger: logger}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func runMake(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("make", flag.ContinueOnError)
	fs.SetOutput(stderr)

	project := fs.String("project", ".", "project root containing elm.json")
	output := fs.String("output", "", "output file (default from config, else elm.js)")
	debug := fs.Bool("debug", false, "compile with the time-travelling debugger")
	optimize := fs.Bool("optimize", false, "compile with --optimize")
	report := fs.String("report", "", "compiler report format (json)")
	docs := fs.String("docs", "", "write package documentation to this file")
	steps := fs.String("steps", "", "comma-separated post-processing steps (transform,modularize,bindings,optimize,minify)")
	test := fs.Bool("test", false, "use test-dependency rules")
	force := fs.Bool("force", false, "recollect transformation rules")
	verbose := fs.Bool("verbose", false, "debug logging and informational diagnostics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*project, *verbose, stderr)
	if err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = s.cfg.Inputs
	}

	if len(inputs) == 0 {
		return errors.New("no input modules given")
	}

	stepNames := s.cfg.Steps
	if *steps != "" {
		stepNames = strings.Split(*steps, ",")
	}

	stepSet, err := pipeline.ParseSteps(stepNames)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = filepath.Join(s.root, s.cfg.Output)
	}

	out, err = filepath.Abs(out)
	if err != nil {
		return err
	}

	runner := newRunner(s, stdout, stderr)

	res, err := runner.Run(ctx, pipeline.Options{
		ProjectRoot:    s.root,
		Inputs:         inputs,
		Output:         out,
		Debug:          *debug,
		Optimize:       *optimize,
		Report:         *report,
		Docs:           *docs,
		Steps:          stepSet,
		Test:           *test,
		ForceRefresh:   *force,
		MinifierConfig: s.cfg.Minifier.Config,
	})
	if err != nil {
		return err
	}

	printDiagnostics(stderr, &res.Diagnostics, *verbose)
	s.logger.Info("build finished",
		slog.String("output", res.Output),
		slog.String("steps", stepSet.String()),
		slog.Int("rules", res.Rules),
		slog.Duration("compile", res.Compile))

	return nil
}

func newRunner(s *session, stdout, stderr io.Writer) *pipeline.Runner {
	r := &pipeline.Runner{
		Compiler: &pipeline.ExecCompiler{
			Command: s.cfg.Compiler.Command,
			Dir:     s.root,
			Stdout:  stdout,
			Stderr:  stderr,
		},
		Cache:  cache.New(s.env.ElmHome, s.logger),
		Logger: s.logger,
	}

	if t := s.cfg.Optimizer; t.Configured() {
		r.Optimizer = &pipeline.ExecTool{Name: "optimizer", Command: t.Command, Args: t.Args, ConfigFlag: t.ConfigFlag, Dir: s.root, Stderr: stderr}
	}

	if t := s.cfg.Minifier; t.Configured() {
		r.Minifier = &pipeline.ExecTool{Name: "minifier", Command: t.Command, Args: t.Args, ConfigFlag: t.ConfigFlag, Dir: s.root, Stderr: stderr}
	}

	if t := s.cfg.Bindings; t.Configured() {
		r.Bindings = &pipeline.ExecBindings{Command: t.Command, Args: t.Args, Dir: s.root, Stdout: stdout, Stderr: stderr}
	}

	return r
}

func runRules(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	fs.SetOutput(stderr)

	project := fs.String("project", ".", "project root containing elm.json")
	test := fs.Bool("test", false, "show test-dependency rules")
	force := fs.Bool("force", false, "recollect instead of reading the cache")
	dump := fs.Bool("dump", false, "dump every rule")
	verbose := fs.Bool("verbose", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*project, *verbose, stderr)
	if err != nil {
		return err
	}

	var diags diagnostic.Diagnostics

	transforms, err := cache.New(s.env.ElmHome, s.logger).GetOrRefresh(s.root, *test, *force, &diags)
	if err != nil {
		return err
	}

	printDiagnostics(stdout, &diags, true)
	fmt.Fprintf(stdout, "%d rules\n", len(transforms))

	if *dump {
		spew.Fdump(stdout, transforms)
	}

	return nil
}

func runClean(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	fs.SetOutput(stderr)

	project := fs.String("project", ".", "project root containing elm.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := openSession(*project, false, stderr)
	if err != nil {
		return err
	}

	return cache.New(s.env.ElmHome, s.logger).Invalidate(s.root)
}

func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	project := fs.String("project", ".", "project root containing elm.json")

	if err := fs.Parse(args); err != nil {
		return err
	}

	path := filepath.Join(*project, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default()
	cfg.Inputs = []string{"src/Main.elm"}
	cfg.Steps = []string{pipeline.StepTransform.String()}

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "wrote %s\n", path)

	return nil
}

func printDiagnostics(w io.Writer, d *diagnostic.Diagnostics, infos bool) {
	for _, warn := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	if !infos {
		return
	}

	for _, info := range d.Infos {
		fmt.Fprintf(w, "info: %s\n", info)
	}
}
