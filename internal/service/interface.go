package service

import (
	"context"

	"github.com/weiawesome/camlink/internal/domain"
)

// Broadcaster delivers messages to connections and keeps the per-room
// broadcast groups. Sends must not block.
type Broadcaster interface {
	SendToClient(clientID string, message interface{}) error
	BroadcastToRoom(roomCode string, message interface{}, exclude string) error
	JoinRoom(clientID, roomCode string)
	LeaveRoom(clientID, roomCode string)
	CloseRoom(roomCode string)
}

// RoomStatus is the public view of a room returned by CheckRoom.
type RoomStatus struct {
	Exists       bool
	ClientsCount int
	IsActive     bool
}

// RelayService handles room coordination and the camera relay.
//
// Websocket handlers report failures to the sender themselves and return
// the error only so the caller can log it.
type RelayService interface {
	// HandleHostJoin binds a connection as the host of a room.
	HandleHostJoin(ctx context.Context, connID, roomCode string) error

	// HandleClientJoin binds a connection as a client of a room.
	HandleClientJoin(ctx context.Context, connID, roomCode string) error

	// HandleControl routes a host camera command to one client.
	HandleControl(ctx context.Context, connID string, msg *domain.ControlCameraMessage) error

	// HandleStreamImage forwards a client frame to the host.
	HandleStreamImage(ctx context.Context, connID string, msg *domain.StreamImageMessage) error

	// HandleScreenshotRequest asks one client to capture a still.
	HandleScreenshotRequest(ctx context.Context, connID string, msg *domain.RequestScreenshotMessage) error

	// HandleScreenshotResult forwards a captured still to the host.
	HandleScreenshotResult(ctx context.Context, connID string, msg *domain.ScreenshotResultMessage) error

	// HandleLeaveRoom releases a connection from the room it is bound to.
	HandleLeaveRoom(ctx context.Context, connID, roomCode string) error

	// HandleDisconnect cleans up after a connection is gone.
	HandleDisconnect(ctx context.Context, connID string)

	// CreateRoom allocates a room with a fresh code.
	CreateRoom(ctx context.Context) (string, error)

	// CheckRoom reports whether a room exists and how busy it is.
	CheckRoom(roomCode string) RoomStatus

	// SweepIdle evicts idle rooms and returns how many were closed.
	SweepIdle(ctx context.Context) int

	// CloseRoom force-closes a room on operator request.
	CloseRoom(ctx context.Context, roomCode, reason string) error
}
