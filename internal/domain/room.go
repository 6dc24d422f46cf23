package domain

import (
	"strings"
	"time"
)

// Room codes are RoomCodeLength symbols drawn from RoomCodeAlphabet.
const (
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

// NormalizeRoomCode trims and upper-cases a code received from a caller.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode reports whether an already normalized code is well formed.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(RoomCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// Role is the part a connection plays in a room.
type Role string

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

// ClientSession is the host's best-known view of a client's camera.
// The mirrored fields are display state only; the client device is
// authoritative.
type ClientSession struct {
	ID           string    `json:"clientId"`
	ConnectedAt  time.Time `json:"connectedAt"`
	CameraActive bool      `json:"cameraActive"`
	FlashlightOn bool      `json:"flashlightOn"`
	ZoomLevel    float64   `json:"zoomLevel"`
}

// NewClientSession creates a session with default camera state.
func NewClientSession(id string, now time.Time) *ClientSession {
	return &ClientSession{
		ID:          id,
		ConnectedAt: now,
		ZoomLevel:   1.0,
	}
}

// Room pairs one host connection with any number of client connections.
type Room struct {
	Code         string
	HostID       string
	Clients      map[string]*ClientSession
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewRoom creates an empty room with no host.
func NewRoom(code string, now time.Time) *Room {
	return &Room{
		Code:         code,
		Clients:      make(map[string]*ClientSession),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// HasHost reports whether a host connection is bound.
func (r *Room) HasHost() bool {
	return r.HostID != ""
}

// IsHost reports whether connID is the bound host.
func (r *Room) IsHost(connID string) bool {
	return r.HostID != "" && r.HostID == connID
}

// ClientCount returns the number of tracked clients.
func (r *Room) ClientCount() int {
	return len(r.Clients)
}

// IdleFor returns how long the room has gone without activity.
func (r *Room) IdleFor(now time.Time) time.Duration {
	return now.Sub(r.LastActivity)
}

// MemberIDs returns the host (if any) followed by every client id.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.Clients)+1)
	if r.HostID != "" {
		ids = append(ids, r.HostID)
	}
	for id := range r.Clients {
		ids = append(ids, id)
	}
	return ids
}
