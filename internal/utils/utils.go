package utils

import (
	"fmt"
	"strings"
)

// MaskEmail hides the local part of an email beyond its first two characters:
// "johndoe@example.com" becomes "jo***@example.com". Inputs without an "@"
// are returned unchanged.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local := email[:at]
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "***" + email[at:]
}

// BuildReferralLink appends a referral code to the configured base URL
func BuildReferralLink(base, code string) string {
	base = strings.TrimRight(base, "/")
	if strings.Contains(base, "?") {
		return fmt.Sprintf("%s&ref=%s", base, code)
	}
	return fmt.Sprintf("%s?ref=%s", base, code)
}
