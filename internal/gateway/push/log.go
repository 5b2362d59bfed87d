package push

import (
	"context"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

// LogGateway only logs notifications. It is used when no push transport is
// configured.
type LogGateway struct {
	logger logx.Logger
}

// NewLogGateway returns a LogGateway.
func NewLogGateway(logger logx.Logger) *LogGateway {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogGateway{logger: logger}
}

func (g *LogGateway) Broadcast(_ context.Context, topic domain.Topic, title, body string) error {
	g.logger.Info("push broadcast",
		logx.String("channel", string(topic)),
		logx.String("title", title),
		logx.String("body", body),
	)
	return nil
}

func (g *LogGateway) RecordForUser(_ context.Context, rec domain.NotificationRecord) error {
	g.logger.Info("push user notification",
		logx.String("channel", string(rec.Topic)),
		logx.String("user_id", rec.TargetUserID),
		logx.String("title", rec.Title),
		logx.String("page_name", rec.PageName),
	)
	return nil
}
