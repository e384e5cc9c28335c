package mailer

import (
	"context"
	"log/slog"
)

// LogMailer writes verification messages to the log instead of sending them.
// It is the development sink; codes appear in the log output.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) SendVerification(ctx context.Context, msg Message) error {
	rendered, err := Render(m.from, msg)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "verification email",
		"to", rendered.To,
		"subject", rendered.Subject,
		"purpose", rendered.Purpose,
		"code", msg.Code,
	)
	return nil
}
