package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if lang := LanguageFromContext(ctx); lang != "" {
		fields = append(fields, zap.String("rank.language", lang))
	}

	return fields
}

type requestCtxKey struct{}
type languageCtxKey struct{}
type loggerCtxKey struct{}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateRequestID checks a caller-supplied request ID.
func ValidateRequestID(id string) error {
	if id == "" {
		return fmt.Errorf("request id cannot be empty")
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("request id contains invalid UTF-8")
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("request id exceeds max length %d", maxIDLen)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("request id contains invalid characters (must be alphanumeric, hyphen, underscore)")
	}
	return nil
}

// WithRequestID adds a request ID to ctx. Invalid IDs are ignored and ctx
// is returned unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ValidateRequestID(id) != nil {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithLanguage records the resolved ranking language on ctx.
func WithLanguage(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, languageCtxKey{}, code)
}

// LanguageFromContext returns the resolved language code, or "".
func LanguageFromContext(ctx context.Context) string {
	if code, ok := ctx.Value(languageCtxKey{}).(string); ok {
		return code
	}
	return ""
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a nop logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return NewNop()
}
