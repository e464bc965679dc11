// Package collect gathers transformation rules for a project and its
// installed dependencies.
//
// The project's own README comes first and is scanned as is, since rules
// written for the project already use the "$author$project$" prefix. Each
// dependency's README is then read from the Elm package cache, in elm.json
// order (direct before indirect), with the dependency's compiled prefix
// rewritten to the placeholder. A dependency without a README contributes
// nothing.
package collect
