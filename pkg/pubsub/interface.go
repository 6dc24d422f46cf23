package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SourceCamlink marks events published by this server.
const SourceCamlink = "camlink"

// Event is one message on the bus. RoomCode duplicates the code carried in
// the channel name so that Kafka consumers, which read a whole topic, can
// route without parsing.
type Event struct {
	Type      string          `json:"type"`
	RoomCode  string          `json:"room_code"`
	Source    string          `json:"source,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent encodes payload into a camlink event stamped with the current
// UTC time.
func NewEvent(eventType, roomCode string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		Source:    SourceCamlink,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into v. An absent payload leaves v
// untouched.
func (e *Event) UnmarshalPayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// Publisher publishes events to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
}

// Subscriber receives events from every channel matching a pattern.
// The returned channel is closed when ctx is done or the driver stops.
type Subscriber interface {
	SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error)
}

// PubSub is a bus driver.
type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
