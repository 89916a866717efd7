package domain

// Request-context keys set by the identification middleware.
const (
	RequesterIdCtxKey    = "pm-requesterId"
	RequesterEmailCtxKey = "pm-requesterEmail"
)
