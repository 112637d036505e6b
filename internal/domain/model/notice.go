package model

// NoticeSeverity is informational only and never affects control flow.
type NoticeSeverity string

const (
	SeverityError   NoticeSeverity = "error"
	SeverityUpdated NoticeSeverity = "updated"
	SeverityInfo    NoticeSeverity = "info"
)

// Notice is a user-facing outcome message produced while processing one
// request. Uniqueness is enforced on (Scope, Code) for the request lifetime.
type Notice struct {
	Scope    string
	Code     string
	Message  string
	Severity NoticeSeverity
}
