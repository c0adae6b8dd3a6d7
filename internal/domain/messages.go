package domain

import "encoding/json"

// WebSocket message types from observers.
const (
	MsgTypeCommandToggle      = "command-toggle"
	MsgTypeOverlayAlign       = "overlay-align"
	MsgTypeOverlayThemeUpdate = "overlay-theme-update"
	MsgTypePing               = "ping"
)

// WebSocket message types to observers. overlay-align is used in both directions.
const (
	MsgTypeQueue                 = "queue"
	MsgTypeCommandToggleSnapshot = "command-toggle-snapshot"
	MsgTypeOverlayTheme          = "overlay-theme"
	MsgTypeError                 = "error"
	MsgTypePong                  = "pong"
)

// Error codes
const (
	ErrCodeBadRequest = "BAD_REQUEST"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Observer -> Server messages

// CommandToggleMessage keeps its fields raw so a badly typed value never
// rejects the message as a whole.
type CommandToggleMessage struct {
	Type    string          `json:"type"`
	Key     json.RawMessage `json:"key"`
	Enabled json.RawMessage `json:"enabled"`
}

// Toggle returns the key and the enabled flag coerced to a boolean. ok is
// false when key is not a string.
func (m CommandToggleMessage) Toggle() (key string, enabled, ok bool) {
	key, ok = decodeRaw(m.Key).(string)
	if !ok {
		return "", false, false
	}
	return key, truthy(m.Enabled), true
}

// OverlayAlignMessage keeps align and width raw; each is validated on its own.
type OverlayAlignMessage struct {
	Type  string          `json:"type"`
	Align json.RawMessage `json:"align,omitempty"`
	Width json.RawMessage `json:"width,omitempty"`
}

// Update builds a partial alignment update from the fields that have the
// right JSON type. A non-string align or non-numeric width is left out.
func (m OverlayAlignMessage) Update() AlignmentUpdate {
	var u AlignmentUpdate
	if align, ok := decodeRaw(m.Align).(string); ok {
		u.Align = &align
	}
	if width, ok := decodeRaw(m.Width).(float64); ok {
		u.Width = &width
	}
	return u
}

// decodeRaw returns the decoded value, or nil for missing or invalid input.
func decodeRaw(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// truthy coerces a JSON value to a boolean: false, 0, "", null and a
// missing value are false, everything else is true.
func truthy(raw json.RawMessage) bool {
	switch x := decodeRaw(raw).(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// OverlayThemeUpdateMessage carries raw values; non-string entries are dropped.
type OverlayThemeUpdateMessage struct {
	Type  string                 `json:"type"`
	Theme map[string]interface{} `json:"theme"`
}

// Server -> Observer messages

type QueueMessage struct {
	Type  string      `json:"type"`
	Items []QueueItem `json:"items"`
}

type CommandToggleSnapshotMessage struct {
	Type    string          `json:"type"`
	Toggles map[string]bool `json:"toggles"`
}

type OverlayAlignOutMessage struct {
	Type  string `json:"type"`
	Align string `json:"align"`
	Width int    `json:"width"`
}

type OverlayThemeMessage struct {
	Type  string            `json:"type"`
	Theme map[string]string `json:"theme"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

func NewQueueMessage(items []QueueItem) *QueueMessage {
	if items == nil {
		items = []QueueItem{}
	}
	return &QueueMessage{Type: MsgTypeQueue, Items: items}
}

func NewCommandToggleSnapshotMessage(toggles map[string]bool) *CommandToggleSnapshotMessage {
	return &CommandToggleSnapshotMessage{Type: MsgTypeCommandToggleSnapshot, Toggles: toggles}
}

func NewOverlayAlignMessage(a Alignment) *OverlayAlignOutMessage {
	return &OverlayAlignOutMessage{Type: MsgTypeOverlayAlign, Align: a.Align, Width: a.Width}
}

func NewOverlayThemeMessage(theme map[string]string) *OverlayThemeMessage {
	return &OverlayThemeMessage{Type: MsgTypeOverlayTheme, Theme: theme}
}
