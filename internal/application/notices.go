package application

import "github.com/dkindler/talerpanel/internal/domain/model"

// NoticeScope is the scope under which all settings notices are recorded.
const NoticeScope = "taler_settings"

// Notices collects user-visible outcome messages for a single request,
// deduplicated on (scope, code). Construct a fresh instance per request;
// it is not safe for concurrent use and holds no cross-request state.
type Notices struct {
	entries []model.Notice
	seen    map[[2]string]struct{}
}

// NewNotices creates an empty request-scoped notice sink.
func NewNotices() *Notices {
	return &Notices{seen: make(map[[2]string]struct{})}
}

// AddOnce records the notice on first occurrence of (scope, code) within
// this request; later calls with the same pair are silently dropped.
func (n *Notices) AddOnce(scope, code, message string, severity model.NoticeSeverity) {
	key := [2]string{scope, code}
	if _, ok := n.seen[key]; ok {
		return
	}
	n.seen[key] = struct{}{}
	n.entries = append(n.entries, model.Notice{
		Scope:    scope,
		Code:     code,
		Message:  message,
		Severity: severity,
	})
}

// All returns the recorded notices in insertion order.
func (n *Notices) All() []model.Notice {
	return n.entries
}
