package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/weiawesome/camlink/internal/archive"
	"github.com/weiawesome/camlink/internal/audit"
	"github.com/weiawesome/camlink/internal/domain"
	"github.com/weiawesome/camlink/internal/events"
	"github.com/weiawesome/camlink/internal/registry"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/pubsub"
)

const (
	msgHostJoined     = "Joined room as host"
	msgClientJoined   = "Joined room as client"
	msgRoomCreated    = "Room created"
	msgHostLeft       = "The host has left the room"
	msgRoomIdle       = "Room closed due to inactivity"
	msgRoomClosedByOp = "Room closed by operator"
	msgRoomNotFound   = "Room not found"
	msgNoHost         = "Room has no host yet"
	msgHostAsClient   = "Already hosting this room"
)

// Config holds the room timing used by the service.
type Config struct {
	// ActiveThreshold decides CheckRoom's isActive.
	ActiveThreshold time.Duration
	// IdleTimeout is the SweepIdle eviction threshold.
	IdleTimeout time.Duration
}

// Option configures the relay service.
type Option func(*relayService)

// WithEvents publishes lifecycle events through p.
func WithEvents(p events.LifecycleProducer) Option {
	return func(s *relayService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithArchive hands relayed screenshots to sink.
func WithArchive(sink archive.Sink) Option {
	return func(s *relayService) {
		if sink != nil {
			s.archive = sink
		}
	}
}

// relayService serializes every operation behind mu so each event runs to
// completion against the registry. Nothing under mu blocks: hub sends are
// non-blocking and events and archiving are queued.
type relayService struct {
	mu      sync.Mutex
	rooms   *registry.Registry
	hub     Broadcaster
	events  events.LifecycleProducer
	archive archive.Sink
	cfg     Config
}

// NewRelayService creates a RelayService over an injected registry.
func NewRelayService(rooms *registry.Registry, hub Broadcaster, cfg Config, opts ...Option) RelayService {
	if cfg.ActiveThreshold <= 0 {
		cfg.ActiveThreshold = time.Hour
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = time.Hour
	}

	s := &relayService{
		rooms:   rooms,
		hub:     hub,
		events:  events.Discard,
		archive: archive.Disabled,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *relayService) HandleHostJoin(ctx context.Context, connID, roomCode string) error {
	code, err := s.validateCode(connID, roomCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(code)
	if !ok {
		return s.reject(connID, domain.ErrRoomNotFound, msgRoomNotFound)
	}

	if b, bound := s.rooms.Binding(connID); bound && (b.RoomCode != code || b.Role != domain.RoleHost) {
		s.releaseLocked(ctx, connID)
		if room, ok = s.rooms.Get(code); !ok {
			return s.reject(connID, domain.ErrRoomNotFound, msgRoomNotFound)
		}
	}

	room, displaced, err := s.rooms.BindHost(room.Code, connID)
	if err != nil {
		return s.reject(connID, err, "Failed to join room")
	}
	if displaced != "" {
		s.hub.LeaveRoom(displaced, room.Code)
		audit.LogWithDetail(ctx, audit.ActionBindHost, room.Code, connID, displaced, "host replaced")
	}
	s.hub.JoinRoom(connID, room.Code)

	l := pkglog.Ctx(ctx)
	l.Info().Str(pkglog.FieldRoomCode, room.Code).Str(pkglog.FieldRole, string(domain.RoleHost)).Msg("host joined room")

	s.events.HostBound(ctx, room.Code, connID, room.ClientCount())
	return s.hub.SendToClient(connID, domain.NewMessage(domain.EventHostJoined, &domain.HostJoinedMessage{
		RoomCode: room.Code,
		Message:  msgHostJoined,
	}))
}

func (s *relayService) HandleClientJoin(ctx context.Context, connID, roomCode string) error {
	code, err := s.validateCode(connID, roomCode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(code)
	if !ok {
		return s.reject(connID, domain.ErrRoomNotFound, msgRoomNotFound)
	}
	if !room.HasHost() {
		return s.reject(connID, domain.ErrNoHost, msgNoHost)
	}

	if b, bound := s.rooms.Binding(connID); bound {
		if b.RoomCode == code {
			if b.Role == domain.RoleHost {
				return s.reject(connID, fmt.Errorf("%w: host cannot join its own room as a client", domain.ErrValidation), msgHostAsClient)
			}
			return s.sendClientJoined(connID, room)
		}
		s.releaseLocked(ctx, connID)
	}

	room, _, err = s.rooms.AddClient(code, connID)
	if err != nil {
		return s.reject(connID, err, msgForError(err))
	}
	s.hub.JoinRoom(connID, room.Code)

	l := pkglog.Ctx(ctx)
	l.Info().
		Str(pkglog.FieldRoomCode, room.Code).
		Str(pkglog.FieldRole, string(domain.RoleClient)).
		Int("clients", room.ClientCount()).
		Msg("client joined room")

	s.hub.SendToClient(room.HostID, domain.NewMessage(domain.EventClientConnected, &domain.ClientConnectedMessage{
		ClientID:     connID,
		TotalClients: room.ClientCount(),
	}))
	s.events.ClientJoined(ctx, room.Code, connID, room.ClientCount())
	return s.sendClientJoined(connID, room)
}

func (s *relayService) sendClientJoined(connID string, room *domain.Room) error {
	return s.hub.SendToClient(connID, domain.NewMessage(domain.EventClientJoined, &domain.ClientJoinedMessage{
		RoomCode: room.Code,
		HostID:   room.HostID,
		Message:  msgClientJoined,
	}))
}

func (s *relayService) HandleControl(ctx context.Context, connID string, msg *domain.ControlCameraMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, session, ok := s.hostTarget(ctx, connID, msg.RoomCode, msg.ClientID)
	if !ok {
		return nil
	}
	if err := msg.Validate(); err != nil {
		return s.reject(connID, err, err.Error())
	}

	ctrl, err := domain.ParseControl(msg.Action, msg.Value)
	if err != nil {
		return s.reject(connID, err, err.Error())
	}
	ctrl.ApplyTo(session)
	s.rooms.Touch(room.Code)

	return s.hub.SendToClient(session.ID, domain.NewMessage(domain.EventCameraControl, &domain.CameraControlMessage{
		Action: ctrl.Action,
		Value:  ctrl.Value,
	}))
}

func (s *relayService) HandleStreamImage(ctx context.Context, connID string, msg *domain.StreamImageMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(msg.RoomCode)
	if !ok || !room.HasHost() {
		return nil
	}
	s.rooms.Touch(room.Code)

	return s.hub.SendToClient(room.HostID, domain.NewMessage(domain.EventImageStream, &domain.ImageStreamMessage{
		ClientID:  connID,
		ImageData: msg.ImageData,
		Metadata:  msg.Metadata,
	}))
}

func (s *relayService) HandleScreenshotRequest(ctx context.Context, connID string, msg *domain.RequestScreenshotMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, session, ok := s.hostTarget(ctx, connID, msg.RoomCode, msg.ClientID)
	if !ok {
		return nil
	}
	if err := msg.Validate(); err != nil {
		return s.reject(connID, err, err.Error())
	}
	s.rooms.Touch(room.Code)

	return s.hub.SendToClient(session.ID, domain.NewMessage(domain.EventTakeScreenshot, nil))
}

func (s *relayService) HandleScreenshotResult(ctx context.Context, connID string, msg *domain.ScreenshotResultMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(msg.RoomCode)
	if !ok || !room.HasHost() {
		return nil
	}
	now := s.rooms.Now()
	s.rooms.Touch(room.Code)

	err := s.hub.SendToClient(room.HostID, domain.NewMessage(domain.EventScreenshotReceived, &domain.ScreenshotReceivedMessage{
		ClientID:  connID,
		ImageData: msg.ImageData,
		Timestamp: now.UnixMilli(),
	}))

	s.archive.Submit(ctx, archive.Screenshot{
		RoomCode:   room.Code,
		ClientID:   connID,
		ImageData:  msg.ImageData,
		CapturedAt: now,
	})
	return err
}

func (s *relayService) HandleLeaveRoom(ctx context.Context, connID, roomCode string) error {
	code := domain.NormalizeRoomCode(roomCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.rooms.Binding(connID)
	if !ok || b.RoomCode != code {
		l := pkglog.Ctx(ctx)
		l.Debug().Str(pkglog.FieldRoomCode, code).Msg("leave-room for a room the connection is not bound to")
		return nil
	}
	s.releaseLocked(ctx, connID)
	return nil
}

func (s *relayService) HandleDisconnect(ctx context.Context, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked(ctx, connID)
}

func (s *relayService) CreateRoom(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	audit.Log(ctx, audit.ActionCreateRoom, room.Code, "http", msgRoomCreated)
	s.events.RoomCreated(ctx, room.Code)
	return room.Code, nil
}

func (s *relayService) CheckRoom(roomCode string) RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(roomCode)
	if !ok {
		return RoomStatus{}
	}
	return RoomStatus{
		Exists:       true,
		ClientsCount: room.ClientCount(),
		IsActive:     room.IdleFor(s.rooms.Now()) < s.cfg.ActiveThreshold,
	}
}

func (s *relayService) SweepIdle(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := s.rooms.Sweep(s.cfg.IdleTimeout)
	for _, room := range evicted {
		s.announceClosed(ctx, room, pubsub.ReasonIdle, msgRoomIdle, "", "reaper")
	}
	if len(evicted) > 0 {
		l := pkglog.Ctx(ctx)
		l.Info().Int("evicted", len(evicted)).Int("rooms", s.rooms.Count()).Msg("idle rooms swept")
	}
	return len(evicted)
}

func (s *relayService) CloseRoom(ctx context.Context, roomCode, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.rooms.Delete(roomCode)
	if room == nil {
		return domain.ErrRoomNotFound
	}

	msg := msgRoomClosedByOp
	if reason != "" {
		msg = msgRoomClosedByOp + ": " + reason
	}
	s.announceClosed(ctx, room, pubsub.ReasonOperator, msg, "", "operator")
	return nil
}

// releaseLocked moves a connection back to unbound. A departing host closes
// its room; a departing client is reported to the host.
func (s *relayService) releaseLocked(ctx context.Context, connID string) {
	b, ok := s.rooms.Binding(connID)
	if !ok {
		return
	}

	switch b.Role {
	case domain.RoleHost:
		if room := s.rooms.Delete(b.RoomCode); room != nil {
			s.announceClosed(ctx, room, pubsub.ReasonHostLeft, msgHostLeft, connID, connID)
		}

	case domain.RoleClient:
		room, removed := s.rooms.RemoveClient(b.RoomCode, connID)
		s.hub.LeaveRoom(connID, b.RoomCode)
		if !removed {
			return
		}
		s.rooms.Touch(room.Code)

		l := pkglog.Ctx(ctx)
		l.Info().Str(pkglog.FieldRoomCode, room.Code).Int("clients", room.ClientCount()).Msg("client left room")

		s.hub.SendToClient(room.HostID, domain.NewMessage(domain.EventClientDisconnected, &domain.ClientDisconnectedMessage{
			ClientID:         connID,
			RemainingClients: room.ClientCount(),
		}))
		s.events.ClientLeft(ctx, room.Code, connID, room.ClientCount())
	}
}

// announceClosed notifies the members of a room already removed from the
// registry and drops its broadcast group.
func (s *relayService) announceClosed(ctx context.Context, room *domain.Room, reason, message, exclude, actor string) {
	s.hub.BroadcastToRoom(room.Code, domain.NewMessage(domain.EventRoomClosed, &domain.RoomClosedMessage{
		Message: message,
	}), exclude)
	s.hub.CloseRoom(room.Code)

	audit.LogWithDetail(ctx, audit.ActionCloseRoom, room.Code, actor, reason, "room closed")
	s.events.RoomClosed(ctx, room.Code, reason)
	s.archive.RoomClosed(ctx, room.Code)
}

// hostTarget resolves a host-only command. It reports false, after logging,
// when the command must be dropped silently.
func (s *relayService) hostTarget(ctx context.Context, connID, roomCode, clientID string) (*domain.Room, *domain.ClientSession, bool) {
	l := pkglog.Ctx(ctx)

	room, ok := s.rooms.Get(roomCode)
	if !ok {
		l.Debug().Str(pkglog.FieldRoomCode, roomCode).Msg("dropping command for unknown room")
		return nil, nil, false
	}
	if !room.IsHost(connID) {
		l.Debug().Err(domain.ErrUnauthorized).Str(pkglog.FieldRoomCode, room.Code).Msg("dropping command from non-host")
		return nil, nil, false
	}
	session, ok := room.Clients[clientID]
	if !ok {
		l.Debug().Str(pkglog.FieldRoomCode, room.Code).Str(pkglog.FieldTarget, clientID).Msg("dropping command for unknown client")
		return nil, nil, false
	}
	return room, session, true
}

func (s *relayService) validateCode(connID, roomCode string) (string, error) {
	p := domain.RoomCodePayload{RoomCode: roomCode}
	if err := p.Validate(); err != nil {
		return "", s.reject(connID, err, err.Error())
	}
	return p.RoomCode, nil
}

// reject reports err to the originating connection only and returns it.
func (s *relayService) reject(connID string, err error, message string) error {
	s.hub.SendToClient(connID, domain.NewErrorMessage(domain.ErrorCode(err), message))
	return err
}

func msgForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return msgRoomNotFound
	case errors.Is(err, domain.ErrNoHost):
		return msgNoHost
	default:
		return "Failed to join room"
	}
}
