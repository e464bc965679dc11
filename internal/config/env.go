package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvElmHome  = "ELM_HOME"
	EnvCompiler = "ELM_PIPELINE_COMPILER"
)

// DotEnvFile is read from the project root when present.
const DotEnvFile = ".env"

// Env holds the process-level settings. It is resolved once and passed
// down; nothing below the CLI reads the environment.
type Env struct {
	// ElmHome is the Elm package cache root.
	ElmHome string
	// Compiler overrides the configured compiler command when set.
	Compiler string
}

// LoadEnv resolves Env from the process environment, using the project's
// .env file for variables the environment does not set.
func LoadEnv(projectRoot string) (Env, error) {
	dotenv, err := godotenv.Read(filepath.Join(projectRoot, DotEnvFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	return ResolveEnv(dotenv, os.LookupEnv, home)
}

// ResolveEnv builds Env from a lookup function, falling back to dotenv
// values, then to defaults derived from userHome.
func ResolveEnv(dotenv map[string]string, lookup func(string) (string, bool), userHome string) (Env, error) {
	get := func(key string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}

		return dotenv[key]
	}

	env := Env{
		ElmHome:  get(EnvElmHome),
		Compiler: get(EnvCompiler),
	}

	if env.ElmHome == "" {
		if userHome == "" {
			return Env{}, fmt.Errorf("%s is not set and the home directory is unknown", EnvElmHome)
		}

		env.ElmHome = filepath.Join(userHome, ".elm")
	}

	return env, nil
}
