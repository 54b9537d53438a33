// Package notify carries notification intents from the booking transaction
// to whatever actually delivers messages. The engine only decides what should
// be sent and when; delivery is an external concern.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindReminder     Kind = "reminder"
)

// Intent is a structured request to send one message at a given time.
type Intent struct {
	To           string
	Kind         Kind
	Subject      string
	ScheduledFor time.Time
}

// Sender accepts intents for later delivery. Implementations must not block
// the booking transaction on delivery.
type Sender interface {
	Queue(ctx context.Context, intent Intent)
}

// LogSender records queued intents and delivers nothing. It is the default
// sender for deployments without a mail gateway.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogSender{log: log.With(slog.String("component", "notify"))}
}

func (s *LogSender) Queue(ctx context.Context, intent Intent) {
	s.log.Info(
		"notification queued",
		slog.String("to", intent.To),
		slog.String("kind", string(intent.Kind)),
		slog.String("subject", intent.Subject),
		slog.Time("scheduled_for", intent.ScheduledFor),
	)
}
