// Package templates renders order notifications into WhatsApp text bodies.
package templates

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RCushmaniii/order-now-mvp-sub001/internal/domain/notification"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result is a rendered body plus what the engine had to do to produce it
type Result struct {
	Body         string
	Locale       notification.Locale
	Truncated    bool
	DroppedItems int
}

// Engine renders order notifications from locale dictionaries
type Engine struct {
	dictionaries map[notification.Locale]Dictionary
	siteURL      string
	maxLength    int
	logger       *zap.Logger
}

// Option configures the engine
type Option func(*Engine)

// WithSiteURL adds an order tracking link to customer messages
func WithSiteURL(siteURL string) Option {
	return func(e *Engine) {
		e.siteURL = strings.TrimRight(siteURL, "/")
	}
}

// WithMaxLength overrides the body length limit, in characters
func WithMaxLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLength = n
		}
	}
}

// WithLogger sets the logger used to report truncation
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDictionary registers or replaces the dictionary for a locale
func WithDictionary(locale notification.Locale, dict Dictionary) Option {
	return func(e *Engine) {
		e.dictionaries[locale] = dict
	}
}

// NewEngine creates an engine with the built-in Spanish and English dictionaries
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		dictionaries: DefaultDictionaries(),
		maxLength:    notification.MaxMessageLength,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render composes the body for an order notification. Bodies longer than the
// limit lose trailing line items first; the header and footer always survive
// unless they alone exceed the limit.
func (e *Engine) Render(req notification.OrderNotificationRequest) Result {
	locale, dict := e.dictionary(req.Locale)

	header := joinSections(
		dict.Titles[req.Kind],
		joinLines(
			fmt.Sprintf(dict.OrderNumber, req.OrderID),
			optional(dict.Customer, req.CustomerName),
			optional(dict.Phone, counterpartPhone(req)),
			storeLine(dict, req),
		),
	)

	items := make([]string, len(req.Items))
	for i, item := range req.Items {
		items[i] = fmt.Sprintf("• %s x%d - %s", item.Name, item.Quantity, FormatMoney(item.UnitPrice, req.Currency))
	}

	footer := joinLines(
		fmt.Sprintf(dict.Total, FormatMoney(req.Total, req.Currency)),
		optional(dict.Payment, e.paymentLabel(locale, dict, req.PaymentMethod)),
		optional(dict.Address, req.DeliveryAddress),
		optional(dict.Instructions, req.SpecialInstructions),
	)
	closing := e.closing(dict, req)

	body, dropped := e.fit(header, dict, items, joinSections(footer, closing))
	res := Result{Body: body, Locale: locale, Truncated: dropped > 0, DroppedItems: dropped}

	if utf8.RuneCountInString(res.Body) > e.maxLength {
		res.Body = truncateRunes(res.Body, e.maxLength)
		res.Truncated = true
	}
	if res.Truncated {
		e.logger.Warn("notification body truncated",
			zap.String("order_id", req.OrderID),
			zap.String("kind", string(req.Kind)),
			zap.Int("dropped_items", dropped),
			zap.Int("max_length", e.maxLength),
		)
	}
	return res
}

// RenderNoRecentOrder returns the reply for a status query with no matching order
func (e *Engine) RenderNoRecentOrder(locale notification.Locale) string {
	_, dict := e.dictionary(locale)
	return dict.NoRecentOrder
}

// RenderHelp returns the reply to a help request
func (e *Engine) RenderHelp(locale notification.Locale) string {
	_, dict := e.dictionary(locale)
	return dict.Help
}

// StatusLine returns the customer-facing sentence for a status
func (e *Engine) StatusLine(locale notification.Locale, status notification.OrderStatus) string {
	_, dict := e.dictionary(locale)
	if line, ok := dict.StatusLines[status]; ok {
		return line
	}
	return fmt.Sprintf(dict.UnknownStatus, status)
}

func (e *Engine) dictionary(locale notification.Locale) (notification.Locale, Dictionary) {
	if dict, ok := e.dictionaries[locale]; ok {
		return locale, dict
	}
	return notification.DefaultLocale, e.dictionaries[notification.DefaultLocale]
}

func (e *Engine) closing(dict Dictionary, req notification.OrderNotificationRequest) string {
	if req.Kind == notification.KindBusinessAlert {
		return dict.BusinessClose
	}
	var tracking string
	if e.siteURL != "" {
		tracking = fmt.Sprintf(dict.Tracking, e.siteURL+"/orders/"+req.OrderID)
	}
	return joinSections(
		joinLines(e.StatusLine(req.Locale, req.Status), tracking),
		dict.CustomerClose,
	)
}

func (e *Engine) paymentLabel(locale notification.Locale, dict Dictionary, method string) string {
	key := strings.ToLower(strings.TrimSpace(method))
	if key == "" {
		return ""
	}
	if label, ok := dict.PaymentMethods[key]; ok {
		return label
	}
	tag := language.English
	if locale == notification.LocaleSpanish {
		tag = language.Spanish
	}
	return cases.Title(tag).String(strings.ReplaceAll(key, "_", " "))
}

// fit returns the body with as many leading items as fit within the limit,
// and how many were dropped.
func (e *Engine) fit(header string, dict Dictionary, items []string, tail string) (string, int) {
	build := func(n int) string {
		lines := make([]string, 0, n+2)
		lines = append(lines, dict.ItemsHeader)
		lines = append(lines, items[:n]...)
		if dropped := len(items) - n; dropped > 0 {
			lines = append(lines, fmt.Sprintf(dict.MoreItems, dropped))
		}
		return joinSections(header, joinLines(lines...), tail)
	}

	body := build(len(items))
	if utf8.RuneCountInString(body) <= e.maxLength {
		return body, 0
	}

	// Largest prefix whose lines alone fit, then step down until the
	// "more items" line fits as well.
	budget := e.maxLength - utf8.RuneCountInString(build(0))
	n := 0
	for n < len(items) {
		cost := utf8.RuneCountInString(items[n]) + 1
		if cost > budget {
			break
		}
		budget -= cost
		n++
	}
	for ; n > 0; n-- {
		body = build(n)
		if utf8.RuneCountInString(body) <= e.maxLength {
			return body, len(items) - n
		}
	}
	return build(0), len(items)
}

// FormatMoney renders an amount as "$<amount with 2 decimals> <CUR>". The
// output does not depend on the process locale.
func FormatMoney(amount decimal.Decimal, currency string) string {
	return "$" + amount.StringFixed(2) + " " + strings.ToUpper(currency)
}

func counterpartPhone(req notification.OrderNotificationRequest) string {
	if req.Kind == notification.KindBusinessAlert {
		return req.CustomerPhone
	}
	return req.StorePhone
}

func storeLine(dict Dictionary, req notification.OrderNotificationRequest) string {
	if req.Kind == notification.KindBusinessAlert {
		return ""
	}
	return optional(dict.Store, req.StoreName)
}

func optional(format, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}

// joinLines joins lines with newlines, dropping empty ones
func joinLines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// joinSections joins non-empty blocks with a blank line between them
func joinSections(sections ...string) string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
