package domain

import "time"

// Topic is a logical broadcast channel.
type Topic string

// Fixed operational channels.
const (
	TopicServices Topic = "services"
	TopicDelivery Topic = "delivery"
)

// UserTopic returns the per-user channel for userID.
func UserTopic(userID string) Topic {
	return Topic("users" + userID)
}

// NotificationRecord is a persisted user-targeted notification. Records are
// insert-only.
type NotificationRecord struct {
	ID           string
	Title        string
	Body         string
	TargetUserID string
	Topic        Topic
	PageID       string
	PageName     string
	CreatedAt    time.Time
}

// DeadLetter is a notification that could not be delivered asynchronously
// and waits for redelivery.
type DeadLetter struct {
	ID        string
	Payload   []byte
	Attempts  int
	LastError string
	CreatedAt time.Time
}
