package pubsub

import "fmt"

// Channel naming. Every channel has the form {source}:room:{code}:to_{target}
// so the Kafka driver can map it onto a fixed topic keyed by room code.
const (
	// camlink -> observers (dashboards, analytics)
	ChannelRelayToObservers = "camlink:room:%s:to_observers"

	// operators -> camlink
	ChannelOpsToRelay = "ops:room:%s:to_camlink"

	// PatternOpsToRelay matches operator commands for every room.
	PatternOpsToRelay = "ops:room:*:to_camlink"
)

// Lifecycle event types published by camlink.
const (
	EventRoomCreated  = "room_created"
	EventHostBound    = "host_bound"
	EventClientJoined = "client_joined"
	EventClientLeft   = "client_left"
	EventRoomClosed   = "room_closed"
)

// Operator command types consumed by camlink.
const (
	EventCloseRoom = "close_room"
)

// Close reasons carried by room_closed.
const (
	ReasonHostLeft = "host_left"
	ReasonIdle     = "idle"
	ReasonOperator = "operator"
)

// RelayToObserversChannel returns the lifecycle channel for a room.
func RelayToObserversChannel(code string) string {
	return fmt.Sprintf(ChannelRelayToObservers, code)
}

// OpsToRelayChannel returns the operator command channel for a room.
func OpsToRelayChannel(code string) string {
	return fmt.Sprintf(ChannelOpsToRelay, code)
}

// RoomCreatedPayload is published when a room is created over HTTP.
type RoomCreatedPayload struct {
	RoomCode string `json:"room_code"`
}

// MemberPayload is published when a host binds or a client joins or leaves.
type MemberPayload struct {
	RoomCode     string `json:"room_code"`
	ConnID       string `json:"conn_id"`
	Role         string `json:"role"`
	ClientsCount int    `json:"clients_count"`
}

// RoomClosedPayload is published when a room is removed from the registry.
type RoomClosedPayload struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason"`
}

// CloseRoomPayload is the operator request to force-close a room.
type CloseRoomPayload struct {
	Reason string `json:"reason,omitempty"`
}
