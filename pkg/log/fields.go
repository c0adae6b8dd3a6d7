package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Chat
	FieldPlatform = "platform"
	FieldChannel  = "channel"
	FieldCommand  = "command"
	FieldActor    = "actor"

	// Observers
	FieldClientID = "client_id"
	FieldMsgType  = "msg_type"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
