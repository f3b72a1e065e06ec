package mail

import (
	"context"
	"log/slog"
	"sync"
)

// ConsoleSender logs messages instead of sending them. Used when no
// SendGrid key is configured and in tests.
type ConsoleSender struct {
	log *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsoleSender(log *slog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email",
		"to", msg.To.String(),
		"subject", msg.Subject,
		"text", msg.Text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of everything sent so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Message, len(s.sent))
	copy(res, s.sent)
	return res
}
