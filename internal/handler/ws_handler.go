package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/camlink/internal/domain"
	"github.com/weiawesome/camlink/internal/hub"
	"github.com/weiawesome/camlink/internal/service"
	pkglog "github.com/weiawesome/camlink/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // room code possession is the only credential
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub     *hub.Hub
	service service.RelayService
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, svc service.RelayService) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
	}
}

// HandleWebSocket upgrades the request and starts the connection pumps.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := pkglog.Ctx(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn)

	// The request context ends once the handler returns; keep its logger only.
	ctx := pkglog.WithConn(pkglog.WithLogger(context.Background(), l), client.ID)

	client.SetDisconnectHandler(func(c *hub.Client) {
		h.service.HandleDisconnect(ctx, c.ID)
	})

	h.hub.Register(client)
	cl := pkglog.Ctx(ctx)
	cl.Debug().Msg("websocket connected")

	go client.WritePump()
	go client.ReadPump(func(c *hub.Client, message []byte) {
		h.handleMessage(ctx, c, message)
	})
}

// validator is implemented by every inbound payload.
type validator interface {
	Validate() error
}

// decode unmarshals and validates an event payload, reporting failures to
// the sender.
func decode(c *hub.Client, env *domain.Envelope, v validator) bool {
	if !unmarshal(c, env, v) {
		return false
	}
	if err := v.Validate(); err != nil {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeValidation, err.Error()))
		return false
	}
	return true
}

// unmarshal decodes an event payload without validating it. Host-only
// events are validated by the service once the sender is known to be the
// host.
func unmarshal(c *hub.Client, env *domain.Envelope, v interface{}) bool {
	if missing(env.Data) || json.Unmarshal(env.Data, v) != nil {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid "+env.Event+" message"))
		return false
	}
	return true
}

// roomCodeOf unmarshals a join or leave payload. The code itself is
// validated by the service.
func roomCodeOf(c *hub.Client, env *domain.Envelope) (string, bool) {
	var p domain.RoomCodePayload
	if missing(env.Data) || json.Unmarshal(env.Data, &p) != nil {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid "+env.Event+" message"))
		return "", false
	}
	return p.RoomCode, true
}

func missing(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

func (h *WSHandler) handleMessage(ctx context.Context, client *hub.Client, message []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	var err error
	switch env.Event {
	case domain.EventHostJoin:
		if code, ok := roomCodeOf(client, &env); ok {
			err = h.service.HandleHostJoin(ctx, client.ID, code)
		}

	case domain.EventClientJoin:
		if code, ok := roomCodeOf(client, &env); ok {
			err = h.service.HandleClientJoin(ctx, client.ID, code)
		}

	case domain.EventControlCamera:
		var msg domain.ControlCameraMessage
		if unmarshal(client, &env, &msg) {
			err = h.service.HandleControl(ctx, client.ID, &msg)
		}

	case domain.EventStreamImage:
		var msg domain.StreamImageMessage
		if decode(client, &env, &msg) {
			err = h.service.HandleStreamImage(ctx, client.ID, &msg)
		}

	case domain.EventRequestScreenshot:
		var msg domain.RequestScreenshotMessage
		if unmarshal(client, &env, &msg) {
			err = h.service.HandleScreenshotRequest(ctx, client.ID, &msg)
		}

	case domain.EventScreenshotResult:
		var msg domain.ScreenshotResultMessage
		if decode(client, &env, &msg) {
			err = h.service.HandleScreenshotResult(ctx, client.ID, &msg)
		}

	case domain.EventLeaveRoom:
		if code, ok := roomCodeOf(client, &env); ok {
			err = h.service.HandleLeaveRoom(ctx, client.ID, code)
		}

	case domain.EventPing:
		client.SendMessage(domain.NewMessage(domain.EventPong, nil))

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown event"))
	}

	if err != nil {
		logHandlerError(ctx, env.Event, err)
	}
}

func logHandlerError(ctx context.Context, event string, err error) {
	l := pkglog.Ctx(ctx)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrNoHost), errors.Is(err, domain.ErrValidation):
		l.Debug().Err(err).Str(pkglog.FieldEvent, event).Msg("request rejected")
	default:
		l.Error().Err(err).Str(pkglog.FieldEvent, event).Msg("event handler failed")
	}
}
