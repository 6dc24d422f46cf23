package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	pkglog "github.com/weiawesome/camlink/pkg/log"
	"github.com/weiawesome/camlink/pkg/middleware"
)

// NewRouter wires every route behind CORS and request logging.
func NewRouter(ws *WSHandler, api *HTTPHandler, cors middleware.CORSConfig, logger zerolog.Logger) http.Handler {
	router := mux.NewRouter()

	// WebSocket endpoint
	router.HandleFunc("/ws", ws.HandleWebSocket)

	// HTTP API endpoints
	router.HandleFunc("/api/create-room", api.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/create-room", api.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/check-room/{code}", api.CheckRoom).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/rooms/{code}/screenshots", api.ListScreenshots).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/archive/{key:.+}", api.ServeArchive).Methods(http.MethodGet)
	router.HandleFunc("/health", api.HealthCheck).Methods(http.MethodGet)

	router.Use(mux.MiddlewareFunc(middleware.CORS(cors)))

	return pkglog.HTTPMiddleware(logger)(router)
}
