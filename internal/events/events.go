package events

import (
	"context"
	"time"
)

const RoutingKeyItemSubmitted = "item.submitted"

// ItemSubmitted is emitted after a found item has been stored. It never carries
// contact details.
type ItemSubmitted struct {
	EventID   string    `json:"event_id"`
	ItemID    uint64    `json:"item_id"`
	Category  string    `json:"category"`
	City      string    `json:"city"`
	ImagePath string    `json:"image_path"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishItemSubmitted(ctx context.Context, event ItemSubmitted) error
	Close() error
}

// Noop drops every event. Used when RABBITMQ_URL is not configured.
type Noop struct{}

func (Noop) PublishItemSubmitted(context.Context, ItemSubmitted) error { return nil }
func (Noop) Close() error                                            { return nil }
