package auth

import "strings"

// NormalizeEmail trims surrounding whitespace and lower-cases the domain
// part. The local part is kept as typed since mail servers may treat it
// case-sensitively.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
