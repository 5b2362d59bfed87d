package email

import (
	"context"

	"service-shop-delivery/internal/logx"
)

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	logger logx.Logger
}

// NewLogSender returns a LogSender.
func NewLogSender(logger logx.Logger) *LogSender {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (not sent, smtp disabled)",
		logx.String("to", to),
		logx.String("subject", subject),
		logx.String("body", body),
	)
	return nil
}
