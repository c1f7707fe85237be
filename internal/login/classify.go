package login

import "strings"

// IsAuthenticated reports whether the post-submit page shows a logged-in view:
// the content contains one of markers or the literal username.
//
// This is a text heuristic. It breaks if the target changes its wording, and a
// username that happens to appear on the login page itself yields a false positive.
func IsAuthenticated(content, user string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(content, m) {
			return true
		}
	}
	return user != "" && strings.Contains(content, user)
}
