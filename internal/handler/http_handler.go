package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gorilla/mux"
	"github.com/weiawesome/camlink/internal/archive"
	"github.com/weiawesome/camlink/internal/domain"
	"github.com/weiawesome/camlink/internal/service"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/response"
	"github.com/weiawesome/camlink/pkg/storage"
)

// ScreenshotArchive is the read side of the screenshot archive.
type ScreenshotArchive interface {
	List(ctx context.Context, code string) ([]archive.Entry, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ConnectionCounter reports the number of open websocket connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HTTPHandler handles the room HTTP API.
type HTTPHandler struct {
	service service.RelayService
	conns   ConnectionCounter
	archive ScreenshotArchive
}

// NewHTTPHandler creates a new HTTP handler. archive may be nil when
// archiving is disabled.
func NewHTTPHandler(svc service.RelayService, conns ConnectionCounter, archive ScreenshotArchive) *HTTPHandler {
	return &HTTPHandler{
		service: svc,
		conns:   conns,
		archive: archive,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// CreateRoomResponse is the body of a successful room creation.
type CreateRoomResponse struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

// CheckRoomResponse omits the counters for unknown rooms.
type CheckRoomResponse struct {
	Exists       bool  `json:"exists"`
	ClientsCount *int  `json:"clientsCount,omitempty"`
	IsActive     *bool `json:"isActive,omitempty"`
}

// ScreenshotsResponse lists a room's archived screenshots.
type ScreenshotsResponse struct {
	RoomCode    string          `json:"roomCode"`
	Screenshots []archive.Entry `json:"screenshots"`
}

// CreateRoom handles POST /api/create-room
func (h *HTTPHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.CreateRoom(r.Context())
	if err != nil {
		l := pkglog.Ctx(r.Context())
		l.Error().Err(err).Msg("failed to create room")
		response.Error(w, r, http.StatusInternalServerError, domain.ErrCodeInternalError, "Failed to create room")
		return
	}

	response.Created(w, r, CreateRoomResponse{
		Success:  true,
		RoomCode: code,
		Message:  "Room created successfully",
	})
}

// CheckRoom handles GET /api/check-room/{code}
func (h *HTTPHandler) CheckRoom(w http.ResponseWriter, r *http.Request) {
	status := h.service.CheckRoom(mux.Vars(r)["code"])
	if !status.Exists {
		response.OK(w, r, CheckRoomResponse{Exists: false})
		return
	}

	response.OK(w, r, CheckRoomResponse{
		Exists:       true,
		ClientsCount: &status.ClientsCount,
		IsActive:     &status.IsActive,
	})
}

// ListScreenshots handles GET /api/rooms/{code}/screenshots
func (h *HTTPHandler) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		response.NotFound(w, r, "screenshot archive is disabled")
		return
	}

	code := domain.NormalizeRoomCode(mux.Vars(r)["code"])
	if !domain.IsValidRoomCode(code) {
		response.BadRequest(w, r, "invalid room code")
		return
	}

	entries, err := h.archive.List(r.Context(), code)
	if err != nil {
		l := pkglog.Ctx(r.Context())
		l.Error().Err(err).Str(pkglog.FieldRoomCode, code).Msg("failed to list screenshots")
		response.InternalError(w, r, "failed to list screenshots")
		return
	}

	response.OK(w, r, ScreenshotsResponse{RoomCode: code, Screenshots: entries})
}

// ServeArchive handles GET /archive/{key}
func (h *HTTPHandler) ServeArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		response.NotFound(w, r, "screenshot archive is disabled")
		return
	}

	key := mux.Vars(r)["key"]
	rc, err := h.archive.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(w, r, "screenshot not found")
			return
		}
		l := pkglog.Ctx(r.Context())
		l.Error().Err(err).Str("key", key).Msg("failed to read screenshot")
		response.InternalError(w, r, "failed to read screenshot")
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, HealthResponse{
		Status:      "ok",
		Connections: h.conns.ConnectionCount(),
	})
}
