package referral

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
)

// GenerateCode derives a 6-digit referral code from an email address. The
// code is a pure function of the lowercased, trimmed email: the first four
// bytes of its SHA-256 digest reduced into [100000, 999999]. Distinct emails
// can collide; the creation path resolves collisions by salting and retrying.
func GenerateCode(email string) string {
	return generateCodeSalted(email, 0)
}

func generateCodeSalted(email string, salt int) string {
	input := NormalizeEmail(email)
	if salt > 0 {
		input += "#" + strconv.Itoa(salt)
	}
	sum := sha256.Sum256([]byte(input))
	n := binary.BigEndian.Uint32(sum[:4])
	return strconv.FormatUint(uint64(n%900000+100000), 10)
}

// NormalizeEmail trims and lowercases an email for use as a lookup key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
