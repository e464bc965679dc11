// Package namespace rewrites compiled Elm symbol prefixes.
//
// The compiler names every top-level value "$author$package$Module$value".
// For the project being compiled it always uses the placeholder
// "$author$project$". A rule written in a dependency's README naturally uses
// the dependency's own prefix (for example "$elm_community$list_extra$"),
// which is what that package compiles to when it is itself the project. The
// Matcher rewrites such prefixes to the placeholder so the rule can be used
// from any consuming project.
//
// # Escaping policy
//
// Both identifier parts are mangled the way the compiler mangles package
// names: every character outside [A-Za-z0-9_] becomes "_". The mangled parts
// are quoted before being placed in the pattern, and matching is
// case-sensitive. A prefix is only rewritten where it starts a symbol: the
// preceding character must not be a letter, digit, "_" or "$".
package namespace
