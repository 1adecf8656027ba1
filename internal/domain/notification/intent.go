package notification

import "strings"

// Intent is what a customer's free-text message is asking for
type Intent string

const (
	IntentNone        Intent = "none"
	IntentStatusQuery Intent = "status_query"
	IntentHelp        Intent = "help"
)

var (
	statusKeywords = []string{"status", "order", "pedido"}
	helpKeywords   = []string{"help", "ayuda"}
	// keywords that only make sense in Spanish
	spanishKeywords = []string{"pedido", "ayuda", "estado", "hola"}
)

// DetectIntent matches keywords as case-insensitive substrings. A status
// keyword wins over a help keyword when both appear.
func DetectIntent(text string) Intent {
	lower := strings.ToLower(text)
	if containsAny(lower, statusKeywords) {
		return IntentStatusQuery
	}
	if containsAny(lower, helpKeywords) {
		return IntentHelp
	}
	return IntentNone
}

// DetectReplyLocale picks the locale for a canned reply when no order
// language is known.
func DetectReplyLocale(text string, fallback Locale) Locale {
	if containsAny(strings.ToLower(text), spanishKeywords) {
		return LocaleSpanish
	}
	if !fallback.IsValid() {
		return DefaultLocale
	}
	return fallback
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
