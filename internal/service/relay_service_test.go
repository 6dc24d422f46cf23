package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/camlink/internal/archive"
	"github.com/weiawesome/camlink/internal/domain"
	"github.com/weiawesome/camlink/internal/registry"
)

// fakeHub records deliveries per connection.
type fakeHub struct {
	mu     sync.Mutex
	sent   map[string][]*domain.Message
	groups map[string]map[string]bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		sent:   make(map[string][]*domain.Message),
		groups: make(map[string]map[string]bool),
	}
}

func (h *fakeHub) SendToClient(clientID string, message interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent[clientID] = append(h.sent[clientID], message.(*domain.Message))
	return nil
}

func (h *fakeHub) BroadcastToRoom(roomCode string, message interface{}, exclude string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.groups[roomCode] {
		if id != exclude {
			h.sent[id] = append(h.sent[id], message.(*domain.Message))
		}
	}
	return nil
}

func (h *fakeHub) JoinRoom(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.groups[roomCode] == nil {
		h.groups[roomCode] = make(map[string]bool)
	}
	h.groups[roomCode][clientID] = true
}

func (h *fakeHub) LeaveRoom(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups[roomCode], clientID)
}

func (h *fakeHub) CloseRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, roomCode)
}

func (h *fakeHub) events(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.sent[id]))
	for _, m := range h.sent[id] {
		out = append(out, m.Event)
	}
	return out
}

func (h *fakeHub) last(t *testing.T, id string) *domain.Message {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.sent[id]
	require.NotEmpty(t, msgs, "no messages for %s", id)
	return msgs[len(msgs)-1]
}

func (h *fakeHub) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = make(map[string][]*domain.Message)
}

type seqGen struct{ n int }

func (g *seqGen) Generate() (string, error) {
	g.n++
	return []string{"", "ROOM01", "ROOM02", "ROOM03", "ROOM04"}[g.n%5], nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type recordingSink struct {
	mu     sync.Mutex
	shots  []archive.Screenshot
	closed []string
}

func (s *recordingSink) Submit(_ context.Context, shot archive.Screenshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shots = append(s.shots, shot)
}

func (s *recordingSink) RoomClosed(_ context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, code)
}

type fixture struct {
	svc   RelayService
	hub   *fakeHub
	rooms *registry.Registry
	clk   *clock
	sink  *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	rooms := registry.New(&seqGen{}, registry.WithClock(clk.Now))
	h := newFakeHub()
	sink := &recordingSink{}
	svc := NewRelayService(rooms, h, Config{ActiveThreshold: time.Hour, IdleTimeout: time.Hour}, WithArchive(sink))
	return &fixture{svc: svc, hub: h, rooms: rooms, clk: clk, sink: sink}
}

// hostedRoom creates a room with host "host" and the given clients.
func (f *fixture) hostedRoom(t *testing.T, clients ...string) string {
	t.Helper()
	ctx := context.Background()
	code, err := f.svc.CreateRoom(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleHostJoin(ctx, "host", code))
	for _, c := range clients {
		require.NoError(t, f.svc.HandleClientJoin(ctx, c, code))
	}
	f.hub.reset()
	return code
}

func errorCode(t *testing.T, m *domain.Message) string {
	t.Helper()
	require.Equal(t, domain.EventError, m.Event)
	return m.Data.(*domain.ErrorMessage).Code
}

func TestCreateAndCheckRoom(t *testing.T) {
	f := newFixture(t)
	code, err := f.svc.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.True(t, domain.IsValidRoomCode(code))

	status := f.svc.CheckRoom(code)
	assert.Equal(t, RoomStatus{Exists: true, ClientsCount: 0, IsActive: true}, status)

	assert.Equal(t, RoomStatus{Exists: true, ClientsCount: 0, IsActive: true}, f.svc.CheckRoom(" room01 "))
	assert.Equal(t, RoomStatus{}, f.svc.CheckRoom("NOPE00"))

	f.clk.now = f.clk.now.Add(2 * time.Hour)
	assert.False(t, f.svc.CheckRoom(code).IsActive)
}

func TestHostJoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code, _ := f.svc.CreateRoom(ctx)

	require.NoError(t, f.svc.HandleHostJoin(ctx, "host", "room01"))
	m := f.hub.last(t, "host")
	assert.Equal(t, domain.EventHostJoined, m.Event)
	assert.Equal(t, code, m.Data.(*domain.HostJoinedMessage).RoomCode)

	b, ok := f.rooms.Binding("host")
	require.True(t, ok)
	assert.Equal(t, domain.RoleHost, b.Role)
	assert.True(t, f.hub.groups[code]["host"])
}

func TestJoinErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code, _ := f.svc.CreateRoom(ctx)

	err := f.svc.HandleClientJoin(ctx, "c1", code)
	assert.ErrorIs(t, err, domain.ErrNoHost)
	assert.Equal(t, domain.ErrCodeNoHost, errorCode(t, f.hub.last(t, "c1")))

	err = f.svc.HandleClientJoin(ctx, "c1", "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Equal(t, domain.ErrCodeRoomNotFound, errorCode(t, f.hub.last(t, "c1")))

	err = f.svc.HandleHostJoin(ctx, "h", "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Equal(t, domain.ErrCodeRoomNotFound, errorCode(t, f.hub.last(t, "h")))

	err = f.svc.HandleHostJoin(ctx, "h", "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ErrCodeValidation, errorCode(t, f.hub.last(t, "h")))

	_, bound := f.rooms.Binding("c1")
	assert.False(t, bound)
}

func TestClientJoinNotifiesHostOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleClientJoin(ctx, "c2", code))

	assert.Equal(t, []string{domain.EventClientConnected}, f.hub.events("host"))
	connected := f.hub.last(t, "host").Data.(*domain.ClientConnectedMessage)
	assert.Equal(t, "c2", connected.ClientID)
	assert.Equal(t, 2, connected.TotalClients)

	joined := f.hub.last(t, "c2")
	require.Equal(t, domain.EventClientJoined, joined.Event)
	assert.Equal(t, &domain.ClientJoinedMessage{RoomCode: code, HostID: "host", Message: msgClientJoined}, joined.Data)
	assert.Empty(t, f.hub.events("c1"))
}

func TestClientRejoinSameRoomIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleClientJoin(ctx, "c1", code))
	assert.Empty(t, f.hub.events("host"))
	assert.Equal(t, []string{domain.EventClientJoined}, f.hub.events("c1"))
	assert.Equal(t, 1, f.svc.CheckRoom(code).ClientsCount)
}

func TestHostJoiningOwnRoomAsClientIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	err := f.svc.HandleClientJoin(ctx, "host", code)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ErrCodeValidation, errorCode(t, f.hub.last(t, "host")))
	assert.Empty(t, f.hub.events("c1"))

	room, ok := f.rooms.Get(code)
	require.True(t, ok)
	assert.True(t, room.IsHost("host"))
	assert.Equal(t, 1, room.ClientCount())
}

func TestControlFromNonHostIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")

	err := f.svc.HandleControl(ctx, "c2", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "zoom", Value: json.RawMessage(`2.5`),
	})
	require.NoError(t, err)
	assert.Empty(t, f.hub.events("c1"))
	assert.Empty(t, f.hub.events("c2"))

	room, _ := f.rooms.Get(code)
	assert.Equal(t, 1.0, room.Clients["c1"].ZoomLevel)
}

func TestNonHostCommandWithoutTargetIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	// clients echo their own local flashlight and zoom changes without a clientId
	require.NoError(t, f.svc.HandleControl(ctx, "c1", &domain.ControlCameraMessage{
		RoomCode: code, Action: "flashlight", Value: json.RawMessage(`true`),
	}))
	require.NoError(t, f.svc.HandleControl(ctx, "c1", &domain.ControlCameraMessage{
		RoomCode: code, Action: "zoom", Value: json.RawMessage(`-1`),
	}))
	require.NoError(t, f.svc.HandleScreenshotRequest(ctx, "stranger", &domain.RequestScreenshotMessage{RoomCode: code}))

	assert.Empty(t, f.hub.events("c1"))
	assert.Empty(t, f.hub.events("stranger"))
	assert.Empty(t, f.hub.events("host"))

	room, _ := f.rooms.Get(code)
	assert.False(t, room.Clients["c1"].FlashlightOn)
}

func TestHostCommandValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	// no target: dropped silently even for the host
	require.NoError(t, f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, Action: "zoom", Value: json.RawMessage(`2`),
	}))
	require.NoError(t, f.svc.HandleScreenshotRequest(ctx, "host", &domain.RequestScreenshotMessage{RoomCode: code}))
	assert.Empty(t, f.hub.events("host"))
	assert.Empty(t, f.hub.events("c1"))

	err := f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{RoomCode: code, ClientID: "c1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ErrCodeValidation, errorCode(t, f.hub.last(t, "host")))
	assert.Empty(t, f.hub.events("c1"))
}

func TestZoomControlMirrorsAndTargetsOneClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")

	err := f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "zoom", Value: json.RawMessage(`2.5`),
	})
	require.NoError(t, err)

	room, _ := f.rooms.Get(code)
	assert.Equal(t, 2.5, room.Clients["c1"].ZoomLevel)
	assert.Equal(t, 1.0, room.Clients["c2"].ZoomLevel)

	m := f.hub.last(t, "c1")
	require.Equal(t, domain.EventCameraControl, m.Event)
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"camera-control","data":{"action":"zoom","value":2.5}}`, string(raw))

	assert.Empty(t, f.hub.events("c2"))
	assert.Empty(t, f.hub.events("host"))
}

func TestControlMirrorsCameraAndFlashlight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "camera", Value: json.RawMessage(`"start"`),
	}))
	require.NoError(t, f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "flashlight", Value: json.RawMessage(`true`),
	}))

	room, _ := f.rooms.Get(code)
	assert.True(t, room.Clients["c1"].CameraActive)
	assert.True(t, room.Clients["c1"].FlashlightOn)
	assert.Equal(t, []string{domain.EventCameraControl, domain.EventCameraControl}, f.hub.events("c1"))
}

func TestControlInvalidValueReportsToHost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	err := f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "zoom", Value: json.RawMessage(`-1`),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ErrCodeValidation, errorCode(t, f.hub.last(t, "host")))
	assert.Empty(t, f.hub.events("c1"))
}

func TestControlUnknownActionPassesThrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c1", Action: "focus", Value: json.RawMessage(`{"x":1}`),
	}))

	m := f.hub.last(t, "c1").Data.(*domain.CameraControlMessage)
	assert.Equal(t, "focus", m.Action)
	assert.JSONEq(t, `{"x":1}`, string(m.Value))

	room, _ := f.rooms.Get(code)
	assert.Equal(t, *domain.NewClientSession("c1", room.Clients["c1"].ConnectedAt), *room.Clients["c1"])
}

func TestControlUnknownTargetIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")
	other := f.hostedRoomWithHost(t, "host2", "c9")

	require.NoError(t, f.svc.HandleControl(ctx, "host", &domain.ControlCameraMessage{
		RoomCode: code, ClientID: "c9", Action: "camera", Value: json.RawMessage(`"stop"`),
	}))
	assert.Empty(t, f.hub.events("c9"))
	assert.Empty(t, f.hub.events("host"))
	assert.NotEqual(t, code, other)
}

func (f *fixture) hostedRoomWithHost(t *testing.T, host string, clients ...string) string {
	t.Helper()
	ctx := context.Background()
	code, err := f.svc.CreateRoom(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleHostJoin(ctx, host, code))
	for _, c := range clients {
		require.NoError(t, f.svc.HandleClientJoin(ctx, c, code))
	}
	f.hub.reset()
	return code
}

func TestStreamImageGoesToHostOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")
	before, _ := f.rooms.Get(code)
	touched := before.LastActivity
	f.clk.now = f.clk.now.Add(time.Minute)

	require.NoError(t, f.svc.HandleStreamImage(ctx, "c1", &domain.StreamImageMessage{
		RoomCode: code, ImageData: "data:image/jpeg;base64,AAAA", Metadata: json.RawMessage(`{"w":640}`),
	}))

	m := f.hub.last(t, "host").Data.(*domain.ImageStreamMessage)
	assert.Equal(t, "c1", m.ClientID)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", m.ImageData)
	assert.JSONEq(t, `{"w":640}`, string(m.Metadata))
	assert.Empty(t, f.hub.events("c2"))

	room, _ := f.rooms.Get(code)
	assert.True(t, room.LastActivity.After(touched))
}

func TestStreamImageToUnknownRoomIsDropped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandleStreamImage(context.Background(), "c1", &domain.StreamImageMessage{RoomCode: "ZZZZZZ"}))
	assert.Empty(t, f.hub.sent)
}

func TestScreenshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")

	require.NoError(t, f.svc.HandleScreenshotRequest(ctx, "c2", &domain.RequestScreenshotMessage{RoomCode: code, ClientID: "c1"}))
	assert.Empty(t, f.hub.events("c1"))

	require.NoError(t, f.svc.HandleScreenshotRequest(ctx, "host", &domain.RequestScreenshotMessage{RoomCode: code, ClientID: "c1"}))
	assert.Equal(t, []string{domain.EventTakeScreenshot}, f.hub.events("c1"))
	assert.Empty(t, f.hub.events("c2"))

	require.NoError(t, f.svc.HandleScreenshotResult(ctx, "c1", &domain.ScreenshotResultMessage{RoomCode: code, ImageData: "data:image/png;base64,AA=="}))
	m := f.hub.last(t, "host").Data.(*domain.ScreenshotReceivedMessage)
	assert.Equal(t, "c1", m.ClientID)
	assert.Equal(t, f.clk.now.UnixMilli(), m.Timestamp)

	require.Len(t, f.sink.shots, 1)
	assert.Equal(t, archive.Screenshot{RoomCode: code, ClientID: "c1", ImageData: "data:image/png;base64,AA==", CapturedAt: f.clk.now}, f.sink.shots[0])
}

func TestHostDisconnectClosesRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")

	f.svc.HandleDisconnect(ctx, "host")

	assert.Equal(t, []string{domain.EventRoomClosed}, f.hub.events("c1"))
	assert.Equal(t, []string{domain.EventRoomClosed}, f.hub.events("c2"))
	assert.Empty(t, f.hub.events("host"))
	assert.False(t, f.svc.CheckRoom(code).Exists)

	for _, id := range []string{"host", "c1", "c2"} {
		_, bound := f.rooms.Binding(id)
		assert.False(t, bound, id)
	}
	assert.NotContains(t, f.hub.groups, code)
	assert.Equal(t, []string{code}, f.sink.closed)
}

func TestClientDisconnectNotifiesHost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1", "c2")

	f.svc.HandleDisconnect(ctx, "c1")

	m := f.hub.last(t, "host")
	require.Equal(t, domain.EventClientDisconnected, m.Event)
	assert.Equal(t, &domain.ClientDisconnectedMessage{ClientID: "c1", RemainingClients: 1}, m.Data)
	assert.Empty(t, f.hub.events("c2"))

	status := f.svc.CheckRoom(code)
	assert.True(t, status.Exists)
	assert.Equal(t, 1, status.ClientsCount)
	assert.False(t, f.hub.groups[code]["c1"])
}

func TestUnboundDisconnectHasNoEffect(t *testing.T) {
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	f.svc.HandleDisconnect(context.Background(), "stranger")
	assert.Empty(t, f.hub.sent)
	assert.Equal(t, 1, f.svc.CheckRoom(code).ClientsCount)
}

func TestLeaveRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleLeaveRoom(ctx, "c1", "ZZZZZZ"))
	assert.Empty(t, f.hub.sent)

	require.NoError(t, f.svc.HandleLeaveRoom(ctx, "c1", code))
	assert.Equal(t, []string{domain.EventClientDisconnected}, f.hub.events("host"))

	require.NoError(t, f.svc.HandleLeaveRoom(ctx, "host", code))
	assert.False(t, f.svc.CheckRoom(code).Exists)
	assert.Empty(t, f.hub.events("c1"))
}

func TestHostRebindDisplacesPreviousHost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleHostJoin(ctx, "host2", code))
	assert.Equal(t, []string{domain.EventHostJoined}, f.hub.events("host2"))
	assert.Empty(t, f.hub.events("host"))

	_, bound := f.rooms.Binding("host")
	assert.False(t, bound)
	assert.False(t, f.hub.groups[code]["host"])

	f.svc.HandleDisconnect(ctx, "host")
	assert.True(t, f.svc.CheckRoom(code).Exists)

	require.NoError(t, f.svc.HandleStreamImage(ctx, "c1", &domain.StreamImageMessage{RoomCode: code}))
	assert.Equal(t, domain.EventImageStream, f.hub.last(t, "host2").Event)
}

func TestHostRejoinSameRoomReacknowledges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.HandleHostJoin(ctx, "host", code))
	assert.Equal(t, []string{domain.EventHostJoined}, f.hub.events("host"))
	assert.Empty(t, f.hub.events("c1"))
	assert.True(t, f.svc.CheckRoom(code).Exists)
}

func TestJoinReleasesPreviousBinding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.hostedRoom(t, "c1")
	second := f.hostedRoomWithHost(t, "host2")

	require.NoError(t, f.svc.HandleClientJoin(ctx, "c1", second))

	assert.Equal(t, []string{domain.EventClientDisconnected}, f.hub.events("host"))
	assert.Equal(t, []string{domain.EventClientConnected}, f.hub.events("host2"))
	assert.Equal(t, 0, f.svc.CheckRoom(first).ClientsCount)

	b, _ := f.rooms.Binding("c1")
	assert.Equal(t, second, b.RoomCode)
}

func TestSweepIdleClosesStaleRooms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stale := f.hostedRoom(t, "c1")

	f.clk.now = f.clk.now.Add(50 * time.Minute)
	fresh := f.hostedRoomWithHost(t, "host2")

	f.clk.now = f.clk.now.Add(11 * time.Minute)
	assert.Equal(t, 1, f.svc.SweepIdle(ctx))

	assert.False(t, f.svc.CheckRoom(stale).Exists)
	assert.True(t, f.svc.CheckRoom(fresh).Exists)
	assert.Equal(t, []string{domain.EventRoomClosed}, f.hub.events("host"))
	assert.Equal(t, []string{domain.EventRoomClosed}, f.hub.events("c1"))
	assert.Empty(t, f.hub.events("host2"))
}

func TestOperatorCloseRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	code := f.hostedRoom(t, "c1")

	require.NoError(t, f.svc.CloseRoom(ctx, code, "maintenance"))
	m := f.hub.last(t, "c1")
	require.Equal(t, domain.EventRoomClosed, m.Event)
	assert.Equal(t, "Room closed by operator: maintenance", m.Data.(*domain.RoomClosedMessage).Message)
	assert.Equal(t, domain.EventRoomClosed, f.hub.last(t, "host").Event)

	assert.ErrorIs(t, f.svc.CloseRoom(ctx, code, ""), domain.ErrRoomNotFound)
}
