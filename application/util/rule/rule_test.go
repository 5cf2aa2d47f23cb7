package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidToken(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected bool
	}{
		{
			desc:     "valid token with alphabets",
			input:    "Token",
			expected: true,
		},
		{
			desc:     "valid token with digits",
			input:    "Token123",
			expected: true,
		},
		{
			desc:     "valid token with special characters",
			input:    "Token-._~",
			expected: true,
		},
		{
			desc:     "invalid token with space",
			input:    "Token 123",
			expected: false,
		},
		{
			desc:     "invalid token with special characters",
			input:    "Token@123",
			expected: false,
		},
		{
			desc:     "empty token",
			input:    "",
			expected: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			result := IsValidToken(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestIsHex(t *testing.T) {
	for _, c := range "0123456789abcdefABCDEF" {
		assert.True(t, IsHex(c), string(c))
	}
	for _, c := range "gG-%z " {
		assert.False(t, IsHex(c), string(c))
	}
}

func TestIsVisible(t *testing.T) {
	testcases := []struct {
		desc     string
		input    byte
		expected bool
	}{
		{desc: "exclamation mark", input: '!', expected: true},
		{desc: "tilde", input: '~', expected: true},
		{desc: "obs-text", input: 0x80, expected: true},
		{desc: "space", input: ' ', expected: false},
		{desc: "DEL", input: 0x7F, expected: false},
		{desc: "NUL", input: 0x00, expected: false},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsVisible(tc.input))
		})
	}
}

func TestContainsCRLF(t *testing.T) {
	assert.False(t, ContainsCRLF("Not Found"))
	assert.True(t, ContainsCRLF("Not\rFound"))
	assert.True(t, ContainsCRLF("\nNot Found"))
}
