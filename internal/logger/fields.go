package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCVIndex     = "cv_index"
	FieldCVName      = "cv_name"
	FieldDecision    = "decision"
	FieldConfidence  = "confidence"
	FieldExplanation = "explanation"
	FieldRunID       = "run_id"
	// FieldProvider is the structured log field key for the sentiment provider name.
	FieldProvider = "sentiment_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields identifies a candidate in log entries. index is 1-based.
func CandidateFields(index int, name string) []zap.Field {
	fields := []zap.Field{zap.Int(FieldCVIndex, index)}
	return append(fields, StringFields(StringField{Key: FieldCVName, Value: name})...)
}

// DecisionFields describes the outcome for one candidate.
func DecisionFields(decision string, confidence float64, explanation string) []zap.Field {
	return []zap.Field{
		zap.String(FieldDecision, decision),
		zap.Float64(FieldConfidence, confidence),
		zap.String(FieldExplanation, explanation),
	}
}

// ProviderFields returns fields that describe the sentiment provider and model.
// Empty values are ignored.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
