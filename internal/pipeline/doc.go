// Package pipeline runs a build: compile, then post-process.
//
// Steps always run in the same order:
//
//	compile → transform → modularize → bindings → optimize → minify
//
// The compiler, optimizer, minifier and binding generator are external
// programs reached through small interfaces. When no post-processing step is
// requested the compiler writes straight to the requested output and nothing
// else happens. Otherwise the compiler writes an intermediate file under the
// project's elm-stuff directory, the steps rewrite its text, and the result
// is written to the output path.
package pipeline
