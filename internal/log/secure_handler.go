package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked.
// These keys commonly carry credentials or subject identity numbers.
var sensitiveKeys = map[string]bool{
	// Credentials
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"authorization": true,
	"password":      true,
	"secret":        true,
	"token":         true,
	"access_token":  true,

	// Subject identity numbers
	"aadhar":        true,
	"aadhaar":       true,
	"aadhar_number": true,
	"pan":           true,
	"pan_number":    true,
	"epic_number":   true,
	"ref_id":        true,
}

// sensitivePatterns contains value patterns masked regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	// Aadhaar numbers: 12 digits, optionally space- or dash-grouped in fours
	regexp.MustCompile(`^\d{4}[ -]?\d{4}[ -]?\d{4}$`),

	// PAN numbers: five letters, four digits, one letter
	regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Long opaque API keys
	regexp.MustCompile(`^[A-Za-z0-9_-]{32,}$`),
}

// MaskValue replaces sensitive values in log output.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks sensitive attributes.
//
// Design decision: a handler wrapper rather than a custom logger, so it
// composes with any underlying handler (text, JSON) and with every
// component that accepts a *slog.Logger.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a handler with the given attributes added, masked.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, recursing into groups.
func (h *SecureHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			maskedAttrs[i] = h.maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// containsSensitiveKeyword checks for credential-style keywords inside
// composite keys (e.g. "hibp_api_key"). The bare word "key" is excluded
// because it appears in harmless keys like "cache_key".
func containsSensitiveKeyword(key string) bool {
	for _, kw := range []string{"api_key", "apikey", "password", "secret", "token", "credential", "aadhaar", "aadhar"} {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks whether a value matches a sensitive pattern.
// Report identifiers are long opaque strings but not secrets; they are
// exempted so request tracing stays readable.
func isSensitiveValue(value string) bool {
	if strings.HasPrefix(value, "report_") || strings.HasPrefix(value, "sub_") {
		return false
	}
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger creates a text-format slog.Logger that masks sensitive
// attributes. With verbose true the level is Debug, otherwise Info.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output, for log
// aggregation setups.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}
