// Package cache persists a project's collected transformation rules.
//
// The artifact is a JSON array of {find, replace} objects under the
// project's elm-stuff directory, one file for normal builds and one for test
// builds. It is considered stale when elm.json or the project README has a
// modification time strictly after the artifact's, when either of those
// files is missing, or when the artifact itself is missing. Dependency
// READMEs are not checked: they are installed per version, and a version
// change shows up as a change to elm.json.
//
// There is no locking. Concurrent builds of one project may both rebuild
// the artifact; the last write wins and the content is the same.
package cache
