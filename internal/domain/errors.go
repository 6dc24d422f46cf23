package domain

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNoHost             = errors.New("room has no host yet")
	ErrUnauthorized       = errors.New("sender is not the room host")
	ErrValidation         = errors.New("validation failed")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")
)

// Error codes sent to websocket and HTTP callers.
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_FAILED"
	ErrCodeRoomNotFound  = "ROOM_NOT_FOUND"
	ErrCodeNoHost        = "NO_HOST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// ErrorCode maps a domain error onto its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return ErrCodeRoomNotFound
	case errors.Is(err, ErrNoHost):
		return ErrCodeNoHost
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation
	default:
		return ErrCodeInternalError
	}
}
