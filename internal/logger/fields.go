package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldBackend names the embedding, chunking or generation backend.
	FieldBackend = "backend"
	// FieldModel is the model identifier used by a backend.
	FieldModel = "model"
	// FieldRequestID correlates entries of a single analysis request.
	FieldRequestID = "request_id"
)

// StringField is a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	l = OrNop(l)
	if len(fields) == 0 {
		return l
	}

	return l.With(fields...)
}

// BackendFields describes a backend and its model. Empty values are skipped.
func BackendFields(backend, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldBackend, Value: backend},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithBackend attaches the backend fields to l.
func WithBackend(l *zap.Logger, backend, model string) *zap.Logger {
	return WithFields(l, BackendFields(backend, model)...)
}
