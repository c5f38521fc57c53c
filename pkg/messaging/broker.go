package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Event channels published by the alerting core.
const (
	ChannelAlertSent     = "alerts.sent"
	ChannelAlertFailed   = "alerts.failed"
	ChannelAlertResolved = "alerts.resolved"
	ChannelDigestSent    = "digest.sent"
)

// Message is the envelope for published events.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
