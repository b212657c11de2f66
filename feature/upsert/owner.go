package upsert

import "strings"

// isOwnerNotFound reports whether a create failed because its owner is unknown to the
// remote system. The API gives no structured code for this, so the message text is
// matched.
func isOwnerNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "not found") {
		return false
	}
	for _, subject := range []string{"owner", "member", "user"} {
		if strings.Contains(msg, subject) {
			return true
		}
	}
	return false
}
