package audit

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType classifies audit events.
type EventType string

const (
	EventWorkflowTransition EventType = "workflow_transition"
	EventAuthzDenied        EventType = "authorization_denied"
	EventDeliveryFailed     EventType = "delivery_failed"
	EventNotificationFailed EventType = "notification_failed"
)

// Logger writes a structured audit trail of workflow transitions,
// authorization denials and channel delivery failures. All methods are
// nil-safe so callers can pass a nil logger in tests.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds an audit logger on a production Zap config writing to stdout.
func New(serviceName string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zl, err := config.Build()
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	return &Logger{
		zapLogger:   zl,
		serviceName: serviceName,
		environment: environment(),
	}
}

// Transition records an accepted workflow transition.
func (l *Logger) Transition(interviewID int64, action, actorID, actorRole string) {
	if l == nil {
		return
	}
	l.log(zapcore.InfoLevel, EventWorkflowTransition,
		zap.Int64("interview_id", interviewID),
		zap.String("action", action),
		zap.String("actor_id", actorID),
		zap.String("actor_role", actorRole),
	)
}

// Denied records a rejected authorization attempt.
func (l *Logger) Denied(action, actorID, reason string) {
	if l == nil {
		return
	}
	l.log(zapcore.WarnLevel, EventAuthzDenied,
		zap.String("action", action),
		zap.String("actor_id", actorID),
		zap.String("reason", reason),
	)
}

// DeliveryFailed records a channel send failure. Non-fatal: the enclosing
// dispatch continues with the remaining channels.
func (l *Logger) DeliveryFailed(notificationID, channel string, err error) {
	if l == nil {
		return
	}
	l.log(zapcore.WarnLevel, EventDeliveryFailed,
		zap.String("notification_id", notificationID),
		zap.String("channel", channel),
		zap.Error(err),
	)
}

// NotificationFailed records a failed notification request from the
// workflow coordinator. Transitions are not rolled back for this.
func (l *Logger) NotificationFailed(recipientID, notificationType string, err error) {
	if l == nil {
		return
	}
	l.log(zapcore.WarnLevel, EventNotificationFailed,
		zap.String("recipient_id", recipientID),
		zap.String("type", notificationType),
		zap.Error(err),
	)
}

func (l *Logger) log(level zapcore.Level, event EventType, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.Time("at", time.Now().UTC()),
	)
	if ce := l.zapLogger.Check(level, string(event)); ce != nil {
		ce.Write(fields...)
	}
}

// Sync flushes buffered log entries; call on shutdown.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.zapLogger.Sync()
}

func environment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
