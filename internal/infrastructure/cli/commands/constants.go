package commands

// Error messages
const (
	ErrAgentUnavailable        = "agent service unavailable"
	ErrGuardUnavailable        = "duplicate guard unavailable"
	ErrDoctorUnavailable       = "doctor service unavailable"
	ErrHistoryUnavailable      = "history store unavailable"
	ErrCacheUnavailable        = "cache store unavailable"
	ErrConfigLoaderUnavailable = "config loader unavailable"
	ErrKeyRequired             = "--key is required"
	ErrInvalidPruneDays        = "--days must be > 0"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No history recorded yet."
	MsgNoCachedResponses  = "No cached responses."
)
