// Package transform defines find/replace rewrite rules and applies them to
// compiler output.
//
// Matching is literal. Every find text is escaped and all of them are joined
// into one alternation, so the output is scanned once regardless of how many
// rules are loaded. When two finds could match at the same position the one
// declared first wins. Replacement text goes through the conditional
// preprocessor before it is used, and is inserted verbatim.
package transform
