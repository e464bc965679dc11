// Package manifest reads an application's elm.json.
//
// Only the parts the pipeline needs are modelled: the compiler version and
// the dependency lists. Dependency objects keep the order in which their keys
// appear in the file, since rules from dependencies are applied in that
// order.
package manifest
