package notification

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the message dictionary used for a notification.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

// DefaultLocale is used when a request carries no usable locale.
const DefaultLocale = LocaleEnglish

var supportedLocales = []Locale{LocaleEnglish, LocaleSpanish}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// IsValid reports whether the locale has a dictionary
func (l Locale) IsValid() bool {
	for _, s := range supportedLocales {
		if l == s {
			return true
		}
	}
	return false
}

// String returns the string representation
func (l Locale) String() string {
	return string(l)
}

// ParseLocale maps a BCP 47 tag or Accept-Language value such as "es-MX"
// onto a supported locale. Anything unrecognized yields DefaultLocale.
func ParseLocale(raw string) Locale {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[idx]
}
