package notify

import (
	"fmt"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/domain"
)

// Kind says how a message is delivered.
type Kind string

// Message kinds.
const (
	KindUser      Kind = "user"
	KindBroadcast Kind = "broadcast"
)

// Message is one pending notification. It is JSON-serializable so it can be
// parked in the dead-letter store.
type Message struct {
	Kind     Kind         `json:"kind"`
	Topic    domain.Topic `json:"topic"`
	Title    string       `json:"title"`
	Body     string       `json:"body"`
	UserID   string       `json:"user_id,omitempty"`
	PageID   string       `json:"page_id,omitempty"`
	PageName string       `json:"page_name,omitempty"`
	// RecordID names the stored record of a user message. Redelivery reuses
	// it so the record is written once.
	RecordID string `json:"record_id,omitempty"`
}

// UserMessage builds a persisted, user-targeted message.
func UserMessage(userID, title, body string, topic domain.Topic, pageID, pageName string) Message {
	return Message{
		Kind:     KindUser,
		Topic:    topic,
		Title:    title,
		Body:     body,
		UserID:   userID,
		PageID:   pageID,
		PageName: pageName,
	}
}

// BroadcastMessage builds a topic broadcast.
func BroadcastMessage(topic domain.Topic, title, body string) Message {
	return Message{Kind: KindBroadcast, Topic: topic, Title: title, Body: body}
}

// Validate checks the fields required by the message kind.
func (m Message) Validate() error {
	if m.Topic == "" {
		return fmt.Errorf("message topic: %w", apperr.ErrInvalid)
	}
	switch m.Kind {
	case KindUser:
		if m.UserID == "" {
			return fmt.Errorf("message user: %w", apperr.ErrInvalid)
		}
	case KindBroadcast:
	default:
		return fmt.Errorf("message kind %q: %w", m.Kind, apperr.ErrInvalid)
	}
	return nil
}
