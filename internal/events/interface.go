package events

import "context"

// LifecycleProducer announces room lifecycle changes to observers.
// Implementations must not block the caller.
type LifecycleProducer interface {
	RoomCreated(ctx context.Context, code string)
	HostBound(ctx context.Context, code, connID string, clients int)
	ClientJoined(ctx context.Context, code, connID string, clients int)
	ClientLeft(ctx context.Context, code, connID string, clients int)
	RoomClosed(ctx context.Context, code, reason string)
}

// CommandHandler executes operator commands received over the bus.
type CommandHandler interface {
	CloseRoom(ctx context.Context, code, reason string) error
}

// Discard drops every lifecycle event.
var Discard LifecycleProducer = discard{}

type discard struct{}

func (discard) RoomCreated(context.Context, string)               {}
func (discard) HostBound(context.Context, string, string, int)    {}
func (discard) ClientJoined(context.Context, string, string, int) {}
func (discard) ClientLeft(context.Context, string, string, int)   {}
func (discard) RoomClosed(context.Context, string, string)        {}
