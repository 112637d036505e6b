package model

import "time"

// AuthMethod identifies which credential family a Credential carries.
type AuthMethod string

const (
	AuthNone     AuthMethod = "none"
	AuthToken    AuthMethod = "token"
	AuthUserPass AuthMethod = "userpass"
)

// Token scopes requested from the merchant backend. Verification uses the
// read-only scope so a connectivity test never holds more privilege than it
// needs; live order operations use the full order scope.
const (
	ScopeReadonly  = "readonly"
	ScopeOrderFull = "order-full"
)

// Credential is a transient, in-memory-only resolved credential for the
// merchant backend. It is rebuilt from the settings mapping on every request
// and never persisted.
type Credential struct {
	BaseURL string
	Method  AuthMethod

	// Token is the full Authorization header value ("Bearer ..." or
	// "Basic ..."). Set only when Method is AuthToken.
	Token string

	// User/password login fields. Set only when Method is AuthUserPass.
	Username    string
	Password    string
	Instance    string
	Scope       string
	Duration    time.Duration
	Description string
}

// Fingerprint returns a stable string identifying this credential's
// distinguishing fields. Used by the per-request verification run-guard to
// suppress repeated identical checks within one save. Never logged.
func (c Credential) Fingerprint() string {
	return c.BaseURL + "\x00" + string(c.Method) + "\x00" + c.Token +
		"\x00" + c.Username + "\x00" + c.Password + "\x00" + c.Instance +
		"\x00" + c.Scope
}
