package diagnostic

// Diagnostic codes.
const (
	CodeReadmeMissing      = "readme-missing"
	CodeRulesLoaded        = "rules-loaded"
	CodeRuleUnused         = "rule-unused"
	CodeToolConfigMissing  = "tool-config-missing"
	CodeCacheRefreshed     = "cache-refreshed"
	CodeNoPostProcessSteps = "no-post-process-steps"
)
