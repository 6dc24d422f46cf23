package pubsub

import "context"

// NoopPubSub discards published events and never delivers any.
type NoopPubSub struct{}

// NewNoopPubSub returns a disabled event bus.
func NewNoopPubSub() *NoopPubSub {
	return &NoopPubSub{}
}

func (NoopPubSub) Publish(context.Context, string, *Event) error { return nil }

// SubscribePattern returns a channel that closes once ctx is done.
func (NoopPubSub) SubscribePattern(ctx context.Context, _ string) (<-chan *Event, error) {
	ch := make(chan *Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NoopPubSub) Close() error { return nil }
