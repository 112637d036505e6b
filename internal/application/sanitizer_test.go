package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkindler/talerpanel/internal/domain/model"
)

func sanitize(t *testing.T, s *Sanitizer, sub Submission, current model.Settings) (SanitizeResult, *Notices) {
	t.Helper()
	notices := NewNotices()
	result := s.Sanitize(context.Background(), sub, current, notices)
	return result, notices
}

func TestSanitize_PermissionDenied(t *testing.T) {
	s := NewSanitizer(testBox(), denyAll())
	current := model.Settings{model.KeyBaseURL: "https://backend.example.com"}

	result, notices := sanitize(t, s, RouteSubmission(GroupBaseURL, map[string]string{
		model.KeyBaseURL: "https://other.example.com",
	}), current)

	assert.True(t, current.Equal(result.Settings))
	assert.False(t, result.Verify)
	assert.True(t, result.Denied)
	assert.Equal(t, []string{"permission_denied"}, noticeCodes(notices.All()))
}

func TestSanitize_UnknownGroupIsNoOp(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{model.KeyBaseURL: "https://backend.example.com"}

	result, notices := sanitize(t, s, RouteSubmission("mystery_group", map[string]string{"x": "y"}), current)

	assert.True(t, current.Equal(result.Settings))
	assert.False(t, result.Verify)
	assert.False(t, result.Denied)
	assert.Empty(t, notices.All())
}

func TestSanitize_BaseURL_Valid(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())

	result, _ := sanitize(t, s, RouteSubmission(GroupBaseURL, map[string]string{
		model.KeyBaseURL: "  https://backend.example.com/merchant  ",
	}), model.Settings{})

	require.True(t, result.Verify)
	assert.Equal(t, ModeAuto, result.Mode)
	assert.Equal(t, "https://backend.example.com/merchant", result.Settings[model.KeyBaseURL])
}

func TestSanitize_BaseURL_RejectsNonHTTPS(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{model.KeyBaseURL: "https://old.example.com"}

	tests := []struct {
		name string
		url  string
		code string
	}{
		{"http scheme", "http://example.com", "baseurl_invalid"},
		{"no scheme", "example.com", "baseurl_invalid"},
		{"ftp scheme", "ftp://example.com", "baseurl_invalid"},
		{"empty", "", "baseurl_required"},
		{"whitespace only", "   ", "baseurl_required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, notices := sanitize(t, s, RouteSubmission(GroupBaseURL, map[string]string{
				model.KeyBaseURL: tt.url,
			}), current)

			assert.True(t, current.Equal(result.Settings), "previous record unchanged")
			assert.False(t, result.Verify)
			assert.Equal(t, []string{tt.code}, noticeCodes(notices.All()))
		})
	}
}

func TestSanitize_BaseURL_DeleteBypassesValidation(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{
		model.KeyBaseURL:  "https://backend.example.com",
		model.KeyUsername: "alice",
	}

	result, notices := sanitize(t, s, RouteSubmission(GroupBaseURL, map[string]string{
		"taler_baseurl_delete": "1",
	}), current)

	assert.False(t, result.Verify, "delete never verifies")
	_, hasBaseURL := result.Settings[model.KeyBaseURL]
	assert.False(t, hasBaseURL)
	assert.Equal(t, "alice", result.Settings[model.KeyUsername], "other groups untouched")
	assert.Equal(t, []string{"baseurl_deleted"}, noticeCodes(notices.All()))
}

func TestSanitize_UserPass_Valid(t *testing.T) {
	box := testBox()
	s := NewSanitizer(box, allowAll())

	result, _ := sanitize(t, s, RouteSubmission(GroupUserPass, map[string]string{
		model.KeyUsername: "alice",
		model.KeyPassword: "s3cret",
		model.KeyInstance: "sandbox",
	}), model.Settings{model.KeyBaseURL: "https://backend.example.com"})

	require.True(t, result.Verify)
	assert.Equal(t, ModeUserPass, result.Mode)
	assert.Equal(t, "alice", result.Settings[model.KeyUsername])
	assert.Equal(t, "sandbox", result.Settings[model.KeyInstance])

	encrypted := result.Settings[model.KeyPassword]
	require.NotEmpty(t, encrypted)
	assert.NotEqual(t, "s3cret", encrypted, "stored value is never plaintext")
	assert.Equal(t, "s3cret", box.Decrypt(encrypted))
}

func TestSanitize_UserPass_RequiredFields(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{}

	tests := []struct {
		name   string
		fields map[string]string
		code   string
	}{
		{"missing username", map[string]string{model.KeyPassword: "pw", model.KeyInstance: "sandbox"}, "username_required"},
		{"missing instance", map[string]string{model.KeyUsername: "alice", model.KeyPassword: "pw"}, "instance_required"},
		{"empty password with none stored", map[string]string{model.KeyUsername: "alice", model.KeyPassword: "", model.KeyInstance: "sandbox"}, "password_required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, notices := sanitize(t, s, RouteSubmission(GroupUserPass, tt.fields), current)

			assert.True(t, current.Equal(result.Settings))
			assert.False(t, result.Verify)
			assert.Equal(t, []string{tt.code}, noticeCodes(notices.All()))
		})
	}
}

func TestSanitize_UserPass_BlankPasswordKeepsStored(t *testing.T) {
	box := testBox()
	s := NewSanitizer(box, allowAll())
	stored := box.Encrypt("old-password")
	current := model.Settings{
		model.KeyUsername: "alice",
		model.KeyPassword: stored,
		model.KeyInstance: "sandbox",
	}

	result, _ := sanitize(t, s, RouteSubmission(GroupUserPass, map[string]string{
		model.KeyUsername: "bob",
		model.KeyPassword: "",
		model.KeyInstance: "production",
	}), current)

	require.True(t, result.Verify)
	assert.Equal(t, "bob", result.Settings[model.KeyUsername])
	assert.Equal(t, "production", result.Settings[model.KeyInstance])
	assert.Equal(t, stored, result.Settings[model.KeyPassword], "stored password kept as-is")
}

func TestSanitize_UserPass_EncryptionFailure(t *testing.T) {
	s := NewSanitizer(brokenBox(), allowAll())
	current := model.Settings{model.KeyBaseURL: "https://backend.example.com"}

	result, notices := sanitize(t, s, RouteSubmission(GroupUserPass, map[string]string{
		model.KeyUsername: "alice",
		model.KeyPassword: "s3cret",
		model.KeyInstance: "sandbox",
	}), current)

	assert.True(t, current.Equal(result.Settings))
	assert.False(t, result.Verify)
	assert.Equal(t, []string{"userpass_encrypt_failed"}, noticeCodes(notices.All()))
}

func TestSanitize_UserPass_Delete(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{
		model.KeyBaseURL:  "https://backend.example.com",
		model.KeyUsername: "alice",
		model.KeyPassword: "blob",
		model.KeyInstance: "sandbox",
	}

	result, notices := sanitize(t, s, RouteSubmission(GroupUserPass, map[string]string{
		"taler_userpass_delete": "1",
	}), current)

	assert.False(t, result.Verify)
	assert.Equal(t, "https://backend.example.com", result.Settings[model.KeyBaseURL])
	for _, key := range []string{model.KeyUsername, model.KeyPassword, model.KeyInstance} {
		_, ok := result.Settings[key]
		assert.False(t, ok, "%s removed", key)
	}
	assert.Equal(t, []string{"userpass_deleted"}, noticeCodes(notices.All()))
}

func TestSanitize_Token_Valid(t *testing.T) {
	box := testBox()
	s := NewSanitizer(box, allowAll())

	result, _ := sanitize(t, s, RouteSubmission(GroupToken, map[string]string{
		model.KeyToken: "secret-token",
	}), model.Settings{model.KeyBaseURL: "https://backend.example.com"})

	require.True(t, result.Verify)
	assert.Equal(t, ModeToken, result.Mode)
	assert.Equal(t, "secret-token", box.Decrypt(result.Settings[model.KeyToken]))
}

func TestSanitize_Token_BlankIsAlwaysError(t *testing.T) {
	box := testBox()
	s := NewSanitizer(box, allowAll())
	// Unlike passwords, a stored token does not make a blank submission valid.
	current := model.Settings{model.KeyToken: box.Encrypt("stored-token")}

	result, notices := sanitize(t, s, RouteSubmission(GroupToken, map[string]string{
		model.KeyToken: "",
	}), current)

	assert.True(t, current.Equal(result.Settings))
	assert.False(t, result.Verify)
	assert.Equal(t, []string{"token_required"}, noticeCodes(notices.All()))
}

func TestSanitize_Token_EncryptionFailure(t *testing.T) {
	s := NewSanitizer(brokenBox(), allowAll())
	current := model.Settings{}

	result, notices := sanitize(t, s, RouteSubmission(GroupToken, map[string]string{
		model.KeyToken: "secret-token",
	}), current)

	assert.True(t, current.Equal(result.Settings))
	assert.False(t, result.Verify)
	assert.Equal(t, []string{"token_encrypt_failed"}, noticeCodes(notices.All()))
}

func TestSanitize_Token_Delete(t *testing.T) {
	s := NewSanitizer(testBox(), allowAll())
	current := model.Settings{
		model.KeyBaseURL: "https://backend.example.com",
		model.KeyToken:   "blob",
	}

	result, notices := sanitize(t, s, RouteSubmission(GroupToken, map[string]string{
		"taler_token_delete": "1",
	}), current)

	assert.False(t, result.Verify)
	_, ok := result.Settings[model.KeyToken]
	assert.False(t, ok)
	assert.Equal(t, []string{"token_deleted"}, noticeCodes(notices.All()))
}
