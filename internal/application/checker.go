package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// Checker runs the merchant backend login check for a candidate settings
// record and turns the outcome into notices. Construct one per request: the
// run-guard suppressing duplicate identical checks is request-scoped state.
type Checker struct {
	client   driven.MerchantClient
	resolver *Resolver
	notices  *Notices
	ran      map[string]struct{}
}

// NewChecker creates a request-scoped Checker.
func NewChecker(client driven.MerchantClient, resolver *Resolver, notices *Notices) *Checker {
	return &Checker{
		client:   client,
		resolver: resolver,
		notices:  notices,
		ran:      make(map[string]struct{}),
	}
}

// TestLogin verifies that the credentials in the candidate record can
// authenticate against the backend. Returns true when the check passes or
// is skipped because the selected mode's prerequisites are absent; false
// means the candidate must not be committed. One attempt, no retries.
func (c *Checker) TestLogin(ctx context.Context, candidate model.Settings, mode VerifyMode) bool {
	cred := c.resolver.VerificationCredential(candidate, mode)
	if cred == nil {
		return true
	}

	// Duplicate guard: one check and one set of notices per unique
	// (mode, credential) within this request.
	sum := sha256.Sum256([]byte(cred.Fingerprint()))
	runKey := string(mode) + "|" + hex.EncodeToString(sum[:])
	if _, done := c.ran[runKey]; done {
		return true
	}
	c.ran[runKey] = struct{}{}

	authLabel, credentialHint := authUIText(cred.Method)

	report, err := c.client.ConfigCheck(ctx, *cred)
	if err != nil {
		if errors.Is(err, driven.ErrNotMerchantBackend) {
			c.notices.AddOnce(NoticeScope, "backend_login_invalid",
				"Merchant backend login test failed: invalid configuration (is this a Taler merchant backend base URL?).",
				model.SeverityError)
			return false
		}
		// Keep the message generic; transport errors may embed the URL but
		// never credentials.
		c.notices.AddOnce(NoticeScope, "backend_login_exception",
			fmt.Sprintf("Merchant backend login test failed (%s). Please verify the base URL and %s.", authLabel, credentialHint),
			model.SeverityError)
		return false
	}

	if !report.OK {
		c.notices.AddOnce(NoticeScope, "backend_login_failed",
			failureMessage(authLabel, report), model.SeverityError)
		return false
	}

	c.notices.AddOnce(NoticeScope, "backend_login_ok",
		fmt.Sprintf("Merchant backend login test successful (%s).", authLabel),
		model.SeverityUpdated)
	return true
}

func authUIText(method model.AuthMethod) (label, hint string) {
	switch method {
	case model.AuthToken:
		return "access token", "access token"
	case model.AuthUserPass:
		return "username & password", "username, password, and instance ID"
	default:
		return "credentials", "credentials"
	}
}

func failureMessage(authLabel string, report model.CheckReport) string {
	msg := fmt.Sprintf("Merchant backend login test failed (%s): %s stage", authLabel, report.Stage)
	if report.HTTPStatus != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", report.HTTPStatus)
	}
	msg += "."
	if report.ErrorSlug != "" {
		msg += " " + report.ErrorSlug
	}
	return msg
}
