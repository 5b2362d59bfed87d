package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/logx"
)

// Dispatcher persists user notifications and hands messages to the gateway.
type Dispatcher struct {
	records RecordStore
	gateway Gateway
	total   *prometheus.CounterVec
	logger  logx.Logger
	newID   func() string
}

// NewDispatcher creates a Dispatcher. total may be nil.
func NewDispatcher(records RecordStore, gateway Gateway, total *prometheus.CounterVec, logger logx.Logger) *Dispatcher {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Dispatcher{
		records: records,
		gateway: gateway,
		total:   total,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

func (d *Dispatcher) observe(kind Kind, err error) {
	if d.total == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	d.total.WithLabelValues(string(kind), result).Inc()
}

// NotifyUser stores a notification record for userID and pushes it.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID, title, body string, topic domain.Topic, pageID, pageName string) error {
	return d.notifyUser(ctx, UserMessage(userID, title, body, topic, pageID, pageName))
}

func (d *Dispatcher) notifyUser(ctx context.Context, m Message) (err error) {
	defer func() { d.observe(KindUser, err) }()

	id := m.RecordID
	if id == "" {
		id = d.newID()
	}
	rec := domain.NotificationRecord{
		ID:           id,
		Title:        m.Title,
		Body:         m.Body,
		TargetUserID: m.UserID,
		Topic:        m.Topic,
		PageID:       m.PageID,
		PageName:     m.PageName,
	}
	if err := d.records.Insert(ctx, &rec); err != nil {
		return apperr.External("store user notification", err)
	}
	if err := d.gateway.RecordForUser(ctx, rec); err != nil {
		return apperr.External(fmt.Sprintf("push to %s", m.Topic), err)
	}
	return nil
}

// BroadcastTopic publishes to every subscriber of topic. Nothing is stored.
func (d *Dispatcher) BroadcastTopic(ctx context.Context, topic domain.Topic, title, body string) (err error) {
	defer func() { d.observe(KindBroadcast, err) }()

	if err := d.gateway.Broadcast(ctx, topic, title, body); err != nil {
		return apperr.External(fmt.Sprintf("broadcast %s", topic), err)
	}
	return nil
}

// Dispatch routes m by kind.
func (d *Dispatcher) Dispatch(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Kind == KindUser {
		return d.notifyUser(ctx, m)
	}
	return d.BroadcastTopic(ctx, m.Topic, m.Title, m.Body)
}
