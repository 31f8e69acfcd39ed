package referral

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeIsDeterministic(t *testing.T) {
	emails := []string{
		"johndoe@example.com",
		"a@b.co",
		"very.long.address+tag@some-domain.example.org",
	}

	for _, email := range emails {
		first := GenerateCode(email)
		second := GenerateCode(email)
		assert.Equal(t, first, second, "code for %s should be stable", email)
	}
}

func TestGenerateCodeRange(t *testing.T) {
	emails := []string{
		"johndoe@example.com",
		"x@y.z",
		"another.user@example.com",
		"team@tierlink.io",
	}

	for _, email := range emails {
		code := GenerateCode(email)
		require.Len(t, code, 6, "code for %s", email)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateCodeNormalizesEmail(t *testing.T) {
	assert.Equal(t, GenerateCode("user@example.com"), GenerateCode("  USER@Example.COM  "))
}

func TestGenerateCodeSaltChangesCode(t *testing.T) {
	base := generateCodeSalted("user@example.com", 0)
	salted := generateCodeSalted("user@example.com", 1)
	assert.NotEqual(t, base, salted)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail(" User@EXAMPLE.com "))
}
