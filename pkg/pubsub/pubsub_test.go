package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelToTopicAndKey(t *testing.T) {
	topic, key, err := channelToTopicAndKey(RelayToObserversChannel("AB12CD"))
	require.NoError(t, err)
	assert.Equal(t, "camlink-to-observers", topic)
	assert.Equal(t, "AB12CD", key)

	topic, key, err = channelToTopicAndKey(OpsToRelayChannel("ZZ9900"))
	require.NoError(t, err)
	assert.Equal(t, "ops-to-camlink", topic)
	assert.Equal(t, "ZZ9900", key)

	for _, bad := range []string{"", "camlink:AB12CD", "camlink:lobby:AB12CD:to_x", "camlink:room::to_x", "camlink:room:AB:observers"} {
		_, _, err := channelToTopicAndKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestPatternToTopic(t *testing.T) {
	topic, err := patternToTopic(PatternOpsToRelay)
	require.NoError(t, err)
	assert.Equal(t, "ops-to-camlink", topic)
}

func TestNewEventRoundTrip(t *testing.T) {
	ev, err := NewEvent(EventRoomClosed, "AB12CD", RoomClosedPayload{RoomCode: "AB12CD", Reason: ReasonIdle})
	require.NoError(t, err)
	assert.Equal(t, EventRoomClosed, ev.Type)
	assert.Equal(t, SourceCamlink, ev.Source)
	assert.False(t, ev.Timestamp.IsZero())

	var p RoomClosedPayload
	require.NoError(t, ev.UnmarshalPayload(&p))
	assert.Equal(t, ReasonIdle, p.Reason)
}

func TestUnmarshalEmptyPayload(t *testing.T) {
	ev := &Event{Type: EventCloseRoom, RoomCode: "AB12CD"}
	p := CloseRoomPayload{Reason: "unchanged"}
	require.NoError(t, ev.UnmarshalPayload(&p))
	assert.Equal(t, "unchanged", p.Reason)
}

func TestNewPubSubDrivers(t *testing.T) {
	ps, err := NewPubSub(Config{Driver: DriverNone})
	require.NoError(t, err)
	assert.IsType(t, &NoopPubSub{}, ps)

	_, err = NewPubSub(Config{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNoopSubscriptionClosesWithContext(t *testing.T) {
	ps := NewNoopPubSub()
	require.NoError(t, ps.Publish(context.Background(), RelayToObserversChannel("X"), &Event{}))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := ps.SubscribePattern(ctx, PatternOpsToRelay)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription channel not closed")
	}
}
