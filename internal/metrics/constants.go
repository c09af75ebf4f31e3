package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Crafting metric names
const (
	MetricNameCraftAttempts         = "craft_attempts_total"
	MetricNameConsistencyViolations = "craft_consistency_violations_total"
	MetricNameRecipeConfigErrors    = "craft_recipe_config_errors_total"
	MetricNameAttemptLogFailures    = "craft_attempt_log_failures_total"
	MetricNameAutoCraftSessions     = "auto_craft_sessions_total"
	MetricNameAutoCraftRetrySleeps  = "auto_craft_retry_sleeps_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Crafting metric help text
const (
	HelpTextCraftAttempts         = "Total craft attempts by recipe and outcome"
	HelpTextConsistencyViolations = "Craft attempts aborted because the executor lost a consume race"
	HelpTextRecipeConfigErrors    = "Craft attempts aborted by a misconfigured recipe result"
	HelpTextAttemptLogFailures    = "Craft attempt audit rows that could not be written"
	HelpTextAutoCraftSessions     = "Auto-craft sessions started"
	HelpTextAutoCraftRetrySleeps  = "Auto-craft cooldown sleeps taken before retrying"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelRecipe  = "recipe"
	LabelOutcome = "outcome"
)
