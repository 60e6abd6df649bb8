package email

import (
	"context"
	"strings"

	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers transactional email. Implementations are expected to
// be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes outgoing mail to the log instead of delivering it.
// It is the default in development and in environments without an
// email provider configured.
type LogSender struct {
	from string
	logg *logger.Logger
}

// NewLogSender builds a log-backed sender.
func NewLogSender(from string, logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &LogSender{from: from, logg: logg}, nil
}

// Send logs the message fields and succeeds.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address is required")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
	})
	s.logg.Info(logCtx, "email send (log only)")
	return nil
}
