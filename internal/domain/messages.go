package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Events sent by browsers.
const (
	EventHostJoin          = "host-join"
	EventClientJoin        = "client-join"
	EventControlCamera     = "control-camera"
	EventStreamImage       = "stream-image"
	EventRequestScreenshot = "request-screenshot"
	EventScreenshotResult  = "screenshot-result"
	EventLeaveRoom         = "leave-room"
	EventPing              = "ping"
)

// Events sent by the server.
const (
	EventHostJoined         = "host-joined"
	EventClientJoined       = "client-joined"
	EventClientConnected    = "client-connected"
	EventClientDisconnected = "client-disconnected"
	EventCameraControl      = "camera-control"
	EventImageStream        = "image-stream"
	EventTakeScreenshot     = "take-screenshot"
	EventScreenshotReceived = "screenshot-received"
	EventRoomClosed         = "room-closed"
	EventError              = "error"
	EventPong               = "pong"
)

// Envelope is the frame every websocket message travels in.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is an outbound envelope.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// NewMessage wraps data for event.
func NewMessage(event string, data interface{}) *Message {
	return &Message{Event: event, Data: data}
}

// Client -> Server payloads

// RoomCodePayload carries the room code of host-join, client-join and
// leave-room. It decodes from a bare JSON string or from {"roomCode": ...}.
type RoomCodePayload struct {
	RoomCode string `json:"roomCode"`
}

func (p *RoomCodePayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.RoomCode)
	}
	type plain RoomCodePayload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = RoomCodePayload(v)
	return nil
}

// Validate normalizes the code and checks its format.
func (p *RoomCodePayload) Validate() error {
	p.RoomCode = NormalizeRoomCode(p.RoomCode)
	if !IsValidRoomCode(p.RoomCode) {
		return fmt.Errorf("%w: room code must be %d characters of A-Z or 0-9", ErrValidation, RoomCodeLength)
	}
	return nil
}

// ControlCameraMessage is a host command addressed to one client.
type ControlCameraMessage struct {
	RoomCode string          `json:"roomCode"`
	ClientID string          `json:"clientId"`
	Action   string          `json:"action"`
	Value    json.RawMessage `json:"value"`
}

// Validate checks the command once the sender is known to be the host.
// A missing clientId is an unknown target, not a validation failure.
func (m *ControlCameraMessage) Validate() error {
	m.RoomCode = NormalizeRoomCode(m.RoomCode)
	switch {
	case m.RoomCode == "":
		return fmt.Errorf("%w: roomCode is required", ErrValidation)
	case m.Action == "":
		return fmt.Errorf("%w: action is required", ErrValidation)
	}
	return nil
}

// StreamImageMessage is one frame from a client's camera. imageData and
// metadata are opaque to the server.
type StreamImageMessage struct {
	RoomCode  string          `json:"roomCode"`
	ImageData string          `json:"imageData"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

func (m *StreamImageMessage) Validate() error {
	m.RoomCode = NormalizeRoomCode(m.RoomCode)
	if m.RoomCode == "" {
		return fmt.Errorf("%w: roomCode is required", ErrValidation)
	}
	return nil
}

// RequestScreenshotMessage asks one client to capture a still.
type RequestScreenshotMessage struct {
	RoomCode string `json:"roomCode"`
	ClientID string `json:"clientId"`
}

func (m *RequestScreenshotMessage) Validate() error {
	m.RoomCode = NormalizeRoomCode(m.RoomCode)
	if m.RoomCode == "" {
		return fmt.Errorf("%w: roomCode is required", ErrValidation)
	}
	return nil
}

// ScreenshotResultMessage carries a captured still back to the host.
type ScreenshotResultMessage struct {
	RoomCode  string `json:"roomCode"`
	ImageData string `json:"imageData"`
}

func (m *ScreenshotResultMessage) Validate() error {
	m.RoomCode = NormalizeRoomCode(m.RoomCode)
	if m.RoomCode == "" {
		return fmt.Errorf("%w: roomCode is required", ErrValidation)
	}
	return nil
}

// Server -> Client payloads

type HostJoinedMessage struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

type ClientJoinedMessage struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
	Message  string `json:"message"`
}

type ClientConnectedMessage struct {
	ClientID     string `json:"clientId"`
	TotalClients int    `json:"totalClients"`
}

type ClientDisconnectedMessage struct {
	ClientID         string `json:"clientId"`
	RemainingClients int    `json:"remainingClients"`
}

// CameraControlMessage forwards the host's raw action and value.
type CameraControlMessage struct {
	Action string          `json:"action"`
	Value  json.RawMessage `json:"value"`
}

type ImageStreamMessage struct {
	ClientID  string          `json:"clientId"`
	ImageData string          `json:"imageData"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type ScreenshotReceivedMessage struct {
	ClientID  string `json:"clientId"`
	ImageData string `json:"imageData"`
	Timestamp int64  `json:"timestamp"`
}

type RoomClosedMessage struct {
	Message string `json:"message"`
}

// ErrorMessage is sent to the originator of a failed request only.
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewErrorMessage creates an error envelope.
func NewErrorMessage(code, message string) *Message {
	return NewMessage(EventError, &ErrorMessage{Message: message, Code: code})
}
