package audit

import (
	"context"

	"github.com/weiawesome/camlink/pkg/log"
)

// Audit actions.
const (
	ActionCreateRoom = "room.create"
	ActionCloseRoom  = "room.close"
	ActionBindHost   = "room.bind_host"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldActor  = "actor"
	FieldDetail = "detail"
)

// Log emits a structured audit entry through the context logger. actor is
// a connection id, or "http" / "reaper" / "operator" for server-side
// actions.
func Log(ctx context.Context, action, roomCode, actor, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldRoomCode, roomCode).
		Str(FieldActor, actor).
		Msg(msg)
}

// LogWithDetail emits an audit entry with an extra detail field.
func LogWithDetail(ctx context.Context, action, roomCode, actor, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldRoomCode, roomCode).
		Str(FieldActor, actor).
		Str(FieldDetail, detail).
		Msg(msg)
}
