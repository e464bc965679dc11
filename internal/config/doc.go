// Package config loads build settings.
//
// Settings come from three places, resolved once when the process starts:
//
//   - elm-pipeline.yaml at the project root (optional)
//   - the process environment, with .env at the project root as a fallback
//   - command-line flags, applied by the caller on top of the file values
//
// # File format
//
//	output: dist/main.js
//	inputs: [src/Main.elm]
//	steps: [transform, modularize, minify]
//	log_level: info
//	compiler:
//	  command: elm
//	optimizer:
//	  command: elm-optimize-level-2
//	minifier:
//	  command: esbuild
//	  args: [--minify, --format=esm]
//	  config_flag: --config-file
//	  config: minify.json
//	bindings:
//	  command: elm-ts-interop
//
// # Environment
//
//   - ELM_HOME: package cache root, default ~/.elm
//   - ELM_PIPELINE_COMPILER: compiler executable, overrides the file
package config
