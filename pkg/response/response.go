package response

import (
	"encoding/json"
	"net/http"

	pkglog "github.com/weiawesome/camlink/pkg/log"
)

// ErrorBody is the JSON body of a failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		l := pkglog.Ctx(r.Context())
		l.Error().Err(err).Msg("failed to encode response")
	}
}

// OK sends a 200 response.
func OK(w http.ResponseWriter, r *http.Request, v interface{}) {
	JSON(w, r, http.StatusOK, v)
}

// Created sends a 201 response.
func Created(w http.ResponseWriter, r *http.Request, v interface{}) {
	JSON(w, r, http.StatusCreated, v)
}

// Error sends an error response.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	JSON(w, r, status, ErrorBody{Success: false, Code: code, Message: message})
}

// BadRequest sends a 400 error response.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, "BAD_REQUEST", message)
}

// NotFound sends a 404 error response.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError sends a 500 error response.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
