package messaging

import "context"

// NoopBroker discards every publish. Used when no broker is configured
// so the engine does not need nil checks around event publishing.
type NoopBroker struct{}

func NewNoopBroker() Broker {
	return NoopBroker{}
}

func (NoopBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (NoopBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (NoopBroker) Close() error { return nil }
