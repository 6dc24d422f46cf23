package events

import (
	"context"
	"time"

	"github.com/weiawesome/camlink/internal/domain"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/pubsub"
)

type outbound struct {
	channel string
	event   *pubsub.Event
}

// AsyncProducer queues lifecycle events and publishes them from Run, so
// callers holding the relay lock never wait on the network. A full queue
// drops the event.
type AsyncProducer struct {
	publisher pubsub.Publisher
	queue     chan outbound
	timeout   time.Duration
}

// NewAsyncProducer creates a producer with a queue of queueSize events.
func NewAsyncProducer(p pubsub.Publisher, queueSize int, timeout time.Duration) *AsyncProducer {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &AsyncProducer{
		publisher: p,
		queue:     make(chan outbound, queueSize),
		timeout:   timeout,
	}
}

// Run publishes queued events until ctx is done, then flushes what is left.
func (p *AsyncProducer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case out := <-p.queue:
			p.publish(context.Background(), out)
		}
	}
}

func (p *AsyncProducer) flush() {
	for {
		select {
		case out := <-p.queue:
			p.publish(context.Background(), out)
		default:
			return
		}
	}
}

func (p *AsyncProducer) publish(ctx context.Context, out outbound) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, out.channel, out.event); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).
			Str(pkglog.FieldEvent, out.event.Type).
			Str(pkglog.FieldRoomCode, out.event.RoomCode).
			Msg("failed to publish lifecycle event")
	}
}

func (p *AsyncProducer) enqueue(ctx context.Context, eventType, code string, payload interface{}) {
	l := pkglog.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, code, payload)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldEvent, eventType).Msg("failed to encode lifecycle event")
		return
	}

	select {
	case p.queue <- outbound{channel: pubsub.RelayToObserversChannel(code), event: event}:
	default:
		l.Warn().Str(pkglog.FieldEvent, eventType).Str(pkglog.FieldRoomCode, code).Msg("event queue full, dropping lifecycle event")
	}
}

func (p *AsyncProducer) RoomCreated(ctx context.Context, code string) {
	p.enqueue(ctx, pubsub.EventRoomCreated, code, &pubsub.RoomCreatedPayload{RoomCode: code})
}

func (p *AsyncProducer) HostBound(ctx context.Context, code, connID string, clients int) {
	p.enqueue(ctx, pubsub.EventHostBound, code, &pubsub.MemberPayload{
		RoomCode:     code,
		ConnID:       connID,
		Role:         string(domain.RoleHost),
		ClientsCount: clients,
	})
}

func (p *AsyncProducer) ClientJoined(ctx context.Context, code, connID string, clients int) {
	p.enqueue(ctx, pubsub.EventClientJoined, code, &pubsub.MemberPayload{
		RoomCode:     code,
		ConnID:       connID,
		Role:         string(domain.RoleClient),
		ClientsCount: clients,
	})
}

func (p *AsyncProducer) ClientLeft(ctx context.Context, code, connID string, clients int) {
	p.enqueue(ctx, pubsub.EventClientLeft, code, &pubsub.MemberPayload{
		RoomCode:     code,
		ConnID:       connID,
		Role:         string(domain.RoleClient),
		ClientsCount: clients,
	})
}

func (p *AsyncProducer) RoomClosed(ctx context.Context, code, reason string) {
	p.enqueue(ctx, pubsub.EventRoomClosed, code, &pubsub.RoomClosedPayload{RoomCode: code, Reason: reason})
}
