package application

// Form groups. Each settings form submits exactly one group, identified by
// its group token, and carries a group-specific delete flag field.
const (
	GroupBaseURL  = "taler_baseurl_group"
	GroupUserPass = "taler_userpass_group"
	GroupToken    = "taler_token_group"
)

// DeleteFlagForGroup maps a group token to the name of its delete-intent
// form field. Returns "" for unrecognized groups.
func DeleteFlagForGroup(group string) string {
	switch group {
	case GroupBaseURL:
		return "taler_baseurl_delete"
	case GroupUserPass:
		return "taler_userpass_delete"
	case GroupToken:
		return "taler_token_delete"
	default:
		return ""
	}
}

// Submission is one routed settings form submission. Fields distinguishes
// "not provided" (key absent) from "provided empty" (key present, value "");
// secrets like passwords rely on that distinction.
type Submission struct {
	Group  string
	Delete bool
	Fields map[string]string
}

// RouteSubmission builds a Submission from raw form values. The delete
// intent is read from the group's own delete flag field; any non-empty value
// counts as set.
func RouteSubmission(group string, values map[string]string) Submission {
	sub := Submission{Group: group, Fields: values}
	if flag := DeleteFlagForGroup(group); flag != "" {
		sub.Delete = values[flag] != ""
	}
	return sub
}

// Field returns the submitted value for name and whether it was provided at
// all.
func (s Submission) Field(name string) (string, bool) {
	v, ok := s.Fields[name]
	return v, ok
}
