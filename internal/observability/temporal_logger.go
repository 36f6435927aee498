package observability

import (
	"fmt"

	"github.com/rs/zerolog"
)

// TemporalLogger routes Temporal SDK log output through the service's
// zerolog logger so intake-workflow logs land in the same stream, with the
// same format, as the rest of the service.
type TemporalLogger struct {
	logger zerolog.Logger
}

// NewTemporalLogger wraps logger for use as the Temporal client's Logger.
// SDK entries are tagged with "component":"temporal-sdk" to separate them
// from workflow and activity logging.
func NewTemporalLogger(logger zerolog.Logger) *TemporalLogger {
	return &TemporalLogger{logger: logger.With().Str("component", "temporal-sdk").Logger()}
}

// Debug implements log.Logger.
func (l *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.logger.Debug().Fields(keyvalToMap(keyvals)).Msg(msg)
}

// Info implements log.Logger.
func (l *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	l.logger.Info().Fields(keyvalToMap(keyvals)).Msg(msg)
}

// Warn implements log.Logger.
func (l *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.logger.Warn().Fields(keyvalToMap(keyvals)).Msg(msg)
}

// Error implements log.Logger.
func (l *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	l.logger.Error().Fields(keyvalToMap(keyvals)).Msg(msg)
}

// keyvalToMap folds the SDK's alternating key-value list into zerolog fields.
// Non-string keys are stringified rather than dropped; a trailing odd value
// is ignored.
func keyvalToMap(keyvals []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvals[i])
		}
		m[key] = keyvals[i+1]
	}
	return m
}
