package types

// Well-known tags and key prefixes used by the dashboard when caching
// multiplexer session state. The cache itself treats tags and keys as opaque
// strings; these constants only keep the callers consistent.

// Tags for bulk invalidation by category.
const (
	TagSessionData     = "session_data"
	TagSessionStatus   = "session_status"
	TagControllerState = "controller_state"
	TagWindowInfo      = "window_info"
	TagGlobalState     = "global_state"
)

// Key prefixes.
const (
	KeySessionInfo    = "session_info"
	KeySessionList    = "session_list"
	KeyHealthScore    = "health_score"
	KeyPromptPatterns = "prompt_patterns"
	KeyUserPrefs      = "user_prefs"
)
