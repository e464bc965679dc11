package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

var (
	ErrCompilerFailed    = errors.New("compilation failed")
	ErrToolFailed        = errors.New("external tool failed")
	ErrToolNotConfigured = errors.New("no command configured for step")
)

// CompileArgs describes one compiler invocation.
type CompileArgs struct {
	Inputs   []string
	Output   string
	Debug    bool
	Optimize bool
	// Report is the compiler's --report format, e.g. "json".
	Report string
	// Docs is the path for --docs output.
	Docs string
}

// Argv returns the compiler arguments, without the executable.
func (a CompileArgs) Argv() []string {
	argv := make([]string, 0, len(a.Inputs)+6)
	argv = append(argv, "make")
	argv = append(argv, a.Inputs...)

	if a.Debug {
		argv = append(argv, "--debug")
	}

	if a.Optimize {
		argv = append(argv, "--optimize")
	}

	argv = append(argv, "--output="+a.Output)

	if a.Report != "" {
		argv = append(argv, "--report="+a.Report)
	}

	if a.Docs != "" {
		argv = append(argv, "--docs="+a.Docs)
	}

	return argv
}

// Compiler produces JavaScript from Elm sources.
type Compiler interface {
	Compile(ctx context.Context, args CompileArgs) error
}

// TextTool is an external text-to-text program such as an optimizer or a
// minifier. configFile is empty when no configuration file applies.
type TextTool interface {
	Run(ctx context.Context, input, configFile string) (string, error)
}

// BindingGenerator writes companion type-binding files for a build.
type BindingGenerator interface {
	Generate(ctx context.Context, inputs []string, output string) error
}

// ExecCompiler runs the Elm compiler executable.
type ExecCompiler struct {
	// Command is the executable, "elm" when empty.
	Command string
	// Dir is the working directory, usually the project root.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Compile implements Compiler. Any non-zero exit is ErrCompilerFailed.
func (c *ExecCompiler) Compile(ctx context.Context, args CompileArgs) error {
	command := c.Command
	if command == "" {
		command = "elm"
	}

	cmd := exec.CommandContext(ctx, command, args.Argv()...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with status %d", ErrCompilerFailed, command, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: running %s: %w", ErrCompilerFailed, command, err)
	}

	return nil
}

// ExecTool runs a command that reads JavaScript on stdin and writes the
// result to stdout.
type ExecTool struct {
	// Name identifies the tool in errors.
	Name    string
	Command string
	Args    []string
	// ConfigFlag is placed before the configuration file path. A flag
	// ending in "=" is joined with the path into one argument.
	ConfigFlag string
	Dir        string
	Stderr     io.Writer
}

// Argv returns the arguments for one run.
func (t *ExecTool) Argv(configFile string) []string {
	argv := append([]string{}, t.Args...)

	if configFile == "" || t.ConfigFlag == "" {
		return argv
	}

	if strings.HasSuffix(t.ConfigFlag, "=") {
		return append(argv, t.ConfigFlag+configFile)
	}

	return append(argv, t.ConfigFlag, configFile)
}

// Run implements TextTool.
func (t *ExecTool) Run(ctx context.Context, input, configFile string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.Command, t.Argv(configFile)...)
	cmd.Dir = t.Dir
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if t.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, t.Stderr)
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s (%s): %w: %s", ErrToolFailed, t.Name, t.Command, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// ExecBindings runs a binding generator as
// "<command> <args...> <inputs...> --output <output>".
type ExecBindings struct {
	Command string
	Args    []string
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Argv returns the generator arguments.
func (b *ExecBindings) Argv(inputs []string, output string) []string {
	argv := append([]string{}, b.Args...)
	argv = append(argv, inputs...)

	return append(argv, "--output", output)
}

// Generate implements BindingGenerator.
func (b *ExecBindings) Generate(ctx context.Context, inputs []string, output string) error {
	cmd := exec.CommandContext(ctx, b.Command, b.Argv(inputs, output)...)
	cmd.Dir = b.Dir
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: bindings (%s): %w", ErrToolFailed, b.Command, err)
	}

	return nil
}
