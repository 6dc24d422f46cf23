package events

import (
	"context"
	"fmt"

	"github.com/weiawesome/camlink/internal/domain"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/pubsub"
)

// CommandConsumer applies operator commands published on
// ops:room:{code}:to_camlink.
type CommandConsumer struct {
	subscriber pubsub.Subscriber
	handler    CommandHandler
}

// NewCommandConsumer creates a consumer dispatching to handler.
func NewCommandConsumer(sub pubsub.Subscriber, handler CommandHandler) *CommandConsumer {
	return &CommandConsumer{subscriber: sub, handler: handler}
}

// Run subscribes and dispatches commands until ctx is done.
func (c *CommandConsumer) Run(ctx context.Context) error {
	eventCh, err := c.subscriber.SubscribePattern(ctx, pubsub.PatternOpsToRelay)
	if err != nil {
		return fmt.Errorf("failed to subscribe to operator commands: %w", err)
	}

	l := pkglog.L()
	l.Info().Str("pattern", pubsub.PatternOpsToRelay).Msg("listening for operator commands")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}
			c.dispatch(ctx, event)
		}
	}
}

func (c *CommandConsumer) dispatch(ctx context.Context, event *pubsub.Event) {
	l := pkglog.L()

	switch event.Type {
	case pubsub.EventCloseRoom:
		var payload pubsub.CloseRoomPayload
		if len(event.Payload) > 0 {
			if err := event.UnmarshalPayload(&payload); err != nil {
				l.Warn().Err(err).Msg("failed to unmarshal close_room payload")
				return
			}
		}
		code := domain.NormalizeRoomCode(event.RoomCode)
		if err := c.handler.CloseRoom(ctx, code, payload.Reason); err != nil {
			l.Warn().Err(err).Str(pkglog.FieldRoomCode, code).Msg("operator close_room failed")
		}

	default:
		l.Debug().Str(pkglog.FieldEvent, event.Type).Msg("ignoring unknown operator command")
	}
}
