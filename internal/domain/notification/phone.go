package notification

import "strings"

// Defaults for the home market (Mexico).
const (
	DefaultCountryCode       = "52"
	DefaultLocalNumberLength = 10
)

// PhoneNormalizer converts free-form phone input into the international digit
// string the messaging provider expects. It never fails: input it cannot
// improve is returned as its digits only.
type PhoneNormalizer struct {
	CountryCode string
	LocalLength int
}

// NewPhoneNormalizer returns a normalizer for the given country code and
// national number length, falling back to the home market defaults.
func NewPhoneNormalizer(countryCode string, localLength int) PhoneNormalizer {
	countryCode = digitsOnly(countryCode)
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if localLength <= 0 {
		localLength = DefaultLocalNumberLength
	}
	return PhoneNormalizer{CountryCode: countryCode, LocalLength: localLength}
}

// Normalize strips every non-digit character, then:
//   - digits already starting with the country code are returned unchanged
//   - digits of exactly the local length get the country code prepended
//   - anything else is returned as cleaned digits
func (n PhoneNormalizer) Normalize(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, n.CountryCode) {
		return digits
	}
	if len(digits) == n.LocalLength {
		return n.CountryCode + digits
	}
	return digits
}

// mobilePrefixes are the digits WhatsApp reports between the country code
// and a mobile number, which the national number itself never carries.
var mobilePrefixes = map[string]string{
	"52": "1",
	"54": "9",
}

// LookupVariants returns the normalized phone, followed by the same number
// without the mobile prefix when it carries one.
func (n PhoneNormalizer) LookupVariants(raw string) []string {
	normalized := n.Normalize(raw)
	if normalized == "" {
		return nil
	}
	variants := []string{normalized}
	prefix, ok := mobilePrefixes[n.CountryCode]
	if !ok {
		return variants
	}
	mobile := n.CountryCode + prefix
	if strings.HasPrefix(normalized, mobile) && len(normalized) == len(mobile)+n.LocalLength {
		variants = append(variants, n.CountryCode+normalized[len(mobile):])
	}
	return variants
}

// NormalizePhone normalizes with the home market defaults.
func NormalizePhone(raw string) string {
	return NewPhoneNormalizer(DefaultCountryCode, DefaultLocalNumberLength).Normalize(raw)
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
