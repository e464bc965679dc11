// Package diagnostic collects non-fatal findings produced during a build.
//
// Key capabilities:
//   - Dependencies without a README (they contribute no rules)
//   - Rule counts per README
//   - Rules that never matched the compiled output
//   - Optional tool configuration that was not found
package diagnostic
