package application

import (
	"context"
	"net/url"
	"strings"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
	"github.com/dkindler/talerpanel/internal/secretbox"
)

// SanitizeResult is the outcome of sanitizing one submission: the candidate
// record to commit and, when Verify is set, the login check mode that must
// pass first. A rejected submission carries the previous record untouched;
// Denied marks the rejection as an authorization failure.
type SanitizeResult struct {
	Settings model.Settings
	Verify   bool
	Mode     VerifyMode
	Denied   bool
}

func committed(settings model.Settings, mode VerifyMode) SanitizeResult {
	return SanitizeResult{Settings: settings, Verify: true, Mode: mode}
}

func unverified(settings model.Settings) SanitizeResult {
	return SanitizeResult{Settings: settings}
}

// Sanitizer validates and encrypts one settings form group per submission.
// Every rejection path returns the previous record unchanged; partial
// writes into the persisted mapping are forbidden.
type Sanitizer struct {
	box   *secretbox.Box
	authz driven.Authorizer
}

// NewSanitizer creates a Sanitizer encrypting secrets with box and gating
// changes on authz.
func NewSanitizer(box *secretbox.Box, authz driven.Authorizer) *Sanitizer {
	return &Sanitizer{box: box, authz: authz}
}

// Sanitize applies the submitted group to a copy of the current record.
func (s *Sanitizer) Sanitize(ctx context.Context, sub Submission, current model.Settings, notices *Notices) SanitizeResult {
	if !s.authz.CanManageSettings(ctx) {
		notices.AddOnce(NoticeScope, "permission_denied",
			"You do not have permission to change these settings.", model.SeverityError)
		return SanitizeResult{Settings: current, Denied: true}
	}

	switch sub.Group {
	case GroupBaseURL:
		return s.sanitizeBaseURL(sub, current, notices)
	case GroupUserPass:
		return s.sanitizeUserPass(sub, current, notices)
	case GroupToken:
		return s.sanitizeToken(sub, current, notices)
	default:
		// Unrecognized group: change nothing.
		return unverified(current)
	}
}

func (s *Sanitizer) sanitizeBaseURL(sub Submission, current model.Settings, notices *Notices) SanitizeResult {
	candidate := current.Clone()

	if sub.Delete {
		delete(candidate, model.KeyBaseURL)
		notices.AddOnce(NoticeScope, "baseurl_deleted", "Base URL deleted.", model.SeverityUpdated)
		return unverified(candidate)
	}

	raw, _ := sub.Field(model.KeyBaseURL)
	baseURL := strings.TrimSpace(raw)

	if baseURL == "" {
		notices.AddOnce(NoticeScope, "baseurl_required", "Please provide a base URL.", model.SeverityError)
		return unverified(current)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil || !strings.EqualFold(parsedURL.Scheme, "https") || parsedURL.Host == "" {
		notices.AddOnce(NoticeScope, "baseurl_invalid", "Base URL must start with https://", model.SeverityError)
		return unverified(current)
	}

	candidate[model.KeyBaseURL] = baseURL

	// If credentials are present, verify we can reach and authenticate.
	return committed(candidate, ModeAuto)
}

func (s *Sanitizer) sanitizeUserPass(sub Submission, current model.Settings, notices *Notices) SanitizeResult {
	candidate := current.Clone()

	if sub.Delete {
		delete(candidate, model.KeyUsername)
		delete(candidate, model.KeyPassword)
		delete(candidate, model.KeyInstance)
		notices.AddOnce(NoticeScope, "userpass_deleted", "Username and password deleted.", model.SeverityUpdated)
		return unverified(candidate)
	}

	rawUsername, _ := sub.Field(model.KeyUsername)
	username := strings.TrimSpace(rawUsername)
	password, _ := sub.Field(model.KeyPassword)
	rawInstance, _ := sub.Field(model.KeyInstance)
	instance := strings.TrimSpace(rawInstance)

	if username == "" {
		notices.AddOnce(NoticeScope, "username_required", "Please provide a username.", model.SeverityError)
		return unverified(current)
	}
	if instance == "" {
		notices.AddOnce(NoticeScope, "instance_required", "Please provide an instance ID.", model.SeverityError)
		return unverified(current)
	}

	// Leaving the password blank keeps the stored one; that only works when
	// one is already stored.
	if password == "" && current[model.KeyPassword] == "" {
		notices.AddOnce(NoticeScope, "password_required", "Please provide a password.", model.SeverityError)
		return unverified(current)
	}

	candidate[model.KeyUsername] = username
	candidate[model.KeyInstance] = instance

	if password != "" {
		encrypted := s.box.Encrypt(password)
		if encrypted == "" {
			notices.AddOnce(NoticeScope, "userpass_encrypt_failed",
				"Could not encrypt password. Credentials were not saved.", model.SeverityError)
			return unverified(current)
		}
		candidate[model.KeyPassword] = encrypted
	}

	return committed(candidate, ModeUserPass)
}

func (s *Sanitizer) sanitizeToken(sub Submission, current model.Settings, notices *Notices) SanitizeResult {
	candidate := current.Clone()

	if sub.Delete {
		delete(candidate, model.KeyToken)
		notices.AddOnce(NoticeScope, "token_deleted", "Access token deleted.", model.SeverityUpdated)
		return unverified(candidate)
	}

	rawToken, _ := sub.Field(model.KeyToken)
	token := strings.TrimSpace(rawToken)

	// Unlike passwords, a blank token is always an error; tokens are never
	// "kept blank".
	if token == "" {
		notices.AddOnce(NoticeScope, "token_required", "Please provide an access token.", model.SeverityError)
		return unverified(current)
	}

	encrypted := s.box.Encrypt(token)
	if encrypted == "" {
		notices.AddOnce(NoticeScope, "token_encrypt_failed",
			"Could not encrypt access token. Token was not saved.", model.SeverityError)
		return unverified(current)
	}

	candidate[model.KeyToken] = encrypted

	return committed(candidate, ModeToken)
}
