package application

import (
	"regexp"
	"strings"
	"time"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/secretbox"
)

// VerifyMode selects which credential family a save must prove reachable
// before commit.
type VerifyMode string

const (
	ModeAuto     VerifyMode = "auto"
	ModeToken    VerifyMode = "token"
	ModeUserPass VerifyMode = "userpass"
)

const (
	tokenLifetime      = time.Hour
	descriptionCheck   = "talerpanel settings check"
	descriptionRuntime = "talerpanel"
)

var authSchemeRe = regexp.MustCompile(`(?i)^(Bearer|Basic)\s+`)

// Resolver turns the raw settings mapping into typed merchant backend
// credentials. Encrypted fields are decrypted on the fly and only ever held
// in memory.
type Resolver struct {
	box *secretbox.Box
}

// NewResolver creates a Resolver that decrypts stored secrets with box.
func NewResolver(box *secretbox.Box) *Resolver {
	return &Resolver{box: box}
}

// parsed is the decrypted, trimmed view of the settings fields relevant to
// authentication.
type parsed struct {
	baseURL  string
	token    string
	username string
	password string
	instance string
}

func (r *Resolver) parse(settings model.Settings) parsed {
	p := parsed{
		baseURL:  strings.TrimSpace(settings[model.KeyBaseURL]),
		username: strings.TrimSpace(settings[model.KeyUsername]),
		instance: strings.TrimSpace(settings[model.KeyInstance]),
	}
	if enc := settings[model.KeyToken]; enc != "" {
		p.token = NormalizeAuthToken(r.box.Decrypt(enc))
	}
	if enc := settings[model.KeyPassword]; enc != "" {
		p.password = r.box.Decrypt(enc)
	}
	return p
}

// NormalizeAuthToken turns a bare opaque token into a full Authorization
// header value by prefixing "Bearer " unless it already starts with Bearer
// or Basic (case-insensitive).
func NormalizeAuthToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if !authSchemeRe.MatchString(token) {
		return "Bearer " + token
	}
	return token
}

// RuntimeCredential builds the credential used for live order operations.
// An access token takes priority when both families are configured; with
// neither, an AuthNone credential is returned so the caller still attempts
// a bare connection and surfaces the backend's own config response.
func (r *Resolver) RuntimeCredential(settings model.Settings) model.Credential {
	p := r.parse(settings)
	cred := model.Credential{BaseURL: p.baseURL, Method: model.AuthNone}

	if p.token != "" {
		cred.Method = model.AuthToken
		cred.Token = p.token
		return cred
	}

	if p.hasUserPass() {
		return p.userPassCredential(model.ScopeOrderFull, descriptionRuntime)
	}

	return cred
}

// VerificationCredential builds the conservative credential used only to
// test connectivity before a commit. Returns nil (skip verification) when
// the base URL is empty or the selected mode's required fields are absent;
// that is a deliberate no-op, not an error.
func (r *Resolver) VerificationCredential(settings model.Settings, mode VerifyMode) *model.Credential {
	p := r.parse(settings)
	if p.baseURL == "" {
		return nil
	}

	switch mode {
	case ModeToken:
		if p.token == "" {
			return nil
		}
		cred := model.Credential{BaseURL: p.baseURL, Method: model.AuthToken, Token: p.token}
		return &cred

	case ModeUserPass:
		if !p.hasUserPass() {
			return nil
		}
		cred := p.userPassCredential(model.ScopeReadonly, descriptionCheck)
		return &cred

	case ModeAuto:
		// Same priority as the runtime credential: token wins.
		if p.token != "" {
			cred := model.Credential{BaseURL: p.baseURL, Method: model.AuthToken, Token: p.token}
			return &cred
		}
		if p.hasUserPass() {
			cred := p.userPassCredential(model.ScopeReadonly, descriptionCheck)
			return &cred
		}
		return nil

	default:
		return nil
	}
}

func (p parsed) hasUserPass() bool {
	return p.username != "" && p.password != "" && p.instance != ""
}

func (p parsed) userPassCredential(scope, description string) model.Credential {
	return model.Credential{
		BaseURL:     p.baseURL,
		Method:      model.AuthUserPass,
		Username:    p.username,
		Password:    p.password,
		Instance:    p.instance,
		Scope:       scope,
		Duration:    tokenLifetime,
		Description: description,
	}
}
