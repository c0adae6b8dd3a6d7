package audit

import (
	"context"

	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// Audit actions for songqueue-service.
const (
	ActionQueueAdd      = "queue.add"
	ActionQueueSkip     = "queue.skip"
	ActionQueueRemove   = "queue.remove"
	ActionQueueClear    = "queue.clear"
	ActionQueueAnnounce = "queue.announce"
	ActionSettingsWrite = "settings.update"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldSource = "source"
	FieldDetail = "detail"
)

// Sources an audited action can arrive from.
const (
	SourceChat     = "chat"
	SourceHTTP     = "http"
	SourceObserver = "observer"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, source, actor, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(FieldSource, source).
		Str(log.FieldActor, actor).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, source, actor, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(FieldSource, source).
		Str(log.FieldActor, actor).
		Str(FieldDetail, detail).
		Msg(msg)
}
