package constants

import "time"

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
	ContextKeyTask   = "task"

	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Password rules
const (
	MinPasswordLength = 6
	BcryptCost        = 12
)

// List page sizes. Reviewers work through the application queue in bulk.
const (
	TaskPageSize           = 20
	MaxTaskPageSize        = 100
	ApplicationPageSize    = 50
	MaxApplicationPageSize = 200
)

// Dashboard limits
const (
	DashboardRecentLimit      = 5
	DashboardAssignedLimit    = 10
	DashboardFeedLimit        = 10
	DashboardPersonalFeedSize = 5
	RecentRegistrationWindow  = 7 * 24 * time.Hour
	NotSpecified              = "Not specified"
	ApplicationNotApplied     = "not_applied"
)

// Rate limiting
const (
	PasswordChangeLimit  = 3
	PasswordChangeWindow = 15 * time.Minute
	GeneralLimit         = 100
	GeneralWindow        = 15 * time.Minute
)

// Profile limits
const (
	MaxPORs = 10
)
