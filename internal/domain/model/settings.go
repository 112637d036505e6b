// Package model contains the domain entities.
package model

// Settings option keys. Password and token values are stored as encrypted
// blobs, never as plaintext.
const (
	KeyBaseURL  = "taler_base_url"
	KeyUsername = "ext_username"
	KeyPassword = "ext_password"
	KeyInstance = "taler_instance"
	KeyToken    = "taler_token"
)

// Settings is the persisted configuration record, a flat key/value map.
// A key may be present with an empty value; that is distinct from absent.
type Settings map[string]string

// Clone returns an independent copy. A nil receiver clones to an empty,
// non-nil map so callers can mutate the result freely.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two records hold exactly the same keys and values.
func (s Settings) Equal(other Settings) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
