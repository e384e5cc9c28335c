package mailer

import (
	"context"
	"log/slog"

	"campus/pkg/platform/circuit"
)

// Sender delivers one verification message.
type Sender interface {
	SendVerification(ctx context.Context, msg Message) error
}

// FallbackMailer sends through primary and switches to fallback while the
// breaker is open. The primary is still tried on every message so recovery
// is noticed.
type FallbackMailer struct {
	primary  Sender
	fallback Sender
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackMailer(primary, fallback Sender, breaker *circuit.Breaker, logger *slog.Logger) *FallbackMailer {
	return &FallbackMailer{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (m *FallbackMailer) SendVerification(ctx context.Context, msg Message) error {
	err := m.primary.SendVerification(ctx, msg)
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.logger.InfoContext(ctx, "mail delivery recovered", "breaker", m.breaker.Name())
		}
		return nil
	}

	useFallback, change := m.breaker.RecordFailure()
	if change.Opened {
		m.logger.WarnContext(ctx, "mail delivery degraded, using fallback", "breaker", m.breaker.Name(), "error", err)
	}
	if !useFallback {
		return err
	}
	return m.fallback.SendVerification(ctx, msg)
}
