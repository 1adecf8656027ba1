package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"local number with spaces", "55 1234 5678", "525512345678"},
		{"already international", "+52 55 1234 5678", "525512345678"},
		{"punctuation only stripped", "(33) 1234-5678", "523312345678"},
		{"local number starting with country code kept", "5212345678", "5212345678"},
		{"foreign number left alone", "+1 (415) 555-0100", "14155550100"},
		{"too short", "12345", "12345"},
		{"empty", "", ""},
		{"no digits", "call me", ""},
		{"non-ascii digits ignored", "５５12345678", "12345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw))
		})
	}
}

func TestPhoneNormalizer_Idempotent(t *testing.T) {
	inputs := []string{"55 1234 5678", "+52 1 55 1234 5678", "14155550100", "", "9"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}

func TestNewPhoneNormalizer_Defaults(t *testing.T) {
	n := NewPhoneNormalizer("", 0)
	assert.Equal(t, DefaultCountryCode, n.CountryCode)
	assert.Equal(t, DefaultLocalNumberLength, n.LocalLength)

	us := NewPhoneNormalizer("+1", 10)
	assert.Equal(t, "14155550100", us.Normalize("415-555-0100"))
}

func TestPhoneNormalizer_LookupVariants(t *testing.T) {
	mx := NewPhoneNormalizer("52", 10)
	assert.Equal(t, []string{"5213312345678", "523312345678"}, mx.LookupVariants("5213312345678"))
	assert.Equal(t, []string{"523312345678"}, mx.LookupVariants("33 1234 5678"))
	assert.Equal(t, []string{"52133123456"}, mx.LookupVariants("52133123456"))
	assert.Nil(t, mx.LookupVariants("no digits"))

	us := NewPhoneNormalizer("1", 10)
	assert.Equal(t, []string{"14155550100"}, us.LookupVariants("+1 415 555 0100"))
}
