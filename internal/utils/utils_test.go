package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"standard", "johndoe@example.com", "jo***@example.com"},
		{"two char local", "jo@example.com", "jo***@example.com"},
		{"one char local", "j@example.com", "j***@example.com"},
		{"no at sign", "not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskEmail(tt.email))
		})
	}
}

func TestBuildReferralLink(t *testing.T) {
	assert.Equal(t, "https://app.example.com?ref=123456",
		BuildReferralLink("https://app.example.com", "123456"))
	assert.Equal(t, "https://app.example.com?ref=123456",
		BuildReferralLink("https://app.example.com/", "123456"))
	assert.Equal(t, "https://app.example.com/join?src=x&ref=123456",
		BuildReferralLink("https://app.example.com/join?src=x", "123456"))
}
