package bpe

import "go.uber.org/zap"

// Logger is the structured-logging seam used by the trainer and the
// parallel pre-tokenization driver. Call sites log through this
// interface rather than a *zap.Logger, so implementations can be
// swapped without touching training logic; fields are still zap.Field
// values.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// NewZapLogger wraps an existing *zap.Logger. Pass zap.NewNop() (or
// nil) to silence training output entirely.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{z: z}
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }

// nopLogger is used when the caller never supplies a Logger.
type nopLogger struct{}

func (nopLogger) Debug(string, ...zap.Field) {}
func (nopLogger) Info(string, ...zap.Field)  {}
func (nopLogger) Warn(string, ...zap.Field)  {}
