package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/auth/models"
	"campus/internal/platform/logger"
	"campus/pkg/platform/circuit"
)

type scriptedSender struct {
	err  error
	sent []Message
}

func (s *scriptedSender) SendVerification(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestFallbackMailer(t *testing.T) {
	ctx := context.Background()
	msg := Message{To: "ada@example.com", Name: "Ada", Code: "123456", Purpose: models.PurposeRegistration}
	primary := &scriptedSender{err: errors.New("broker unreachable")}
	fallback := &scriptedSender{}
	m := NewFallbackMailer(primary, fallback,
		circuit.New("mail", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1)),
		logger.Discard())

	require.Error(t, m.SendVerification(ctx, msg), "below the threshold the failure surfaces")
	assert.Empty(t, fallback.sent)

	require.NoError(t, m.SendVerification(ctx, msg), "the failure that opens the circuit is absorbed")
	assert.Len(t, fallback.sent, 1)

	primary.err = nil
	require.NoError(t, m.SendVerification(ctx, msg))
	assert.Len(t, primary.sent, 1)
	assert.Len(t, fallback.sent, 1, "breaker closed on the successful trial")
}
