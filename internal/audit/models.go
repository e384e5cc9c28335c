package audit

import "time"

// Category classifies events by their primary purpose.
type Category string

const (
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Action names an audited auth event.
type Action string

const (
	ActionUserRegistered   Action = "user_registered"
	ActionUserVerified     Action = "user_verified"
	ActionLoginSucceeded   Action = "login_succeeded"
	ActionLoginFailed      Action = "login_failed"
	ActionCodeIssued       Action = "verification_code_issued"
	ActionCodeRejected     Action = "verification_code_rejected"
	ActionPasswordReset    Action = "password_reset"
	ActionTokenRevoked     Action = "token_revoked"
	ActionUserInfoAccessed Action = "userinfo_accessed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  Category
	Timestamp time.Time
	Action    Action
	UserID    string
	Email     string
	Reason    string
	RequestID string
	ClientIP  string
	Device    string
}

// CategoryOf returns the category an action is filed under.
func CategoryOf(a Action) Category {
	switch a {
	case ActionLoginFailed, ActionCodeRejected, ActionPasswordReset, ActionTokenRevoked:
		return CategorySecurity
	}
	return CategoryOperations
}
