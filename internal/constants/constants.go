package constants

// Context and session keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	SessionCookieName  = "goal_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 6
	DefaultTokenHours = 1
)

// Goal lifecycle
const (
	// DefaultVoteThreshold is the vote sum at which a PENDING goal becomes ACTIVE.
	DefaultVoteThreshold = 2
)

// Chat
const (
	ChatBacklogSize = 50
	ChatHistorySize = 100
	AnonymousName   = "Anonymous"
)
