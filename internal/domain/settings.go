package domain

// Command toggle keys.
const (
	ToggleTTS    = "tts"
	ToggleSong   = "song"
	ToggleSkip   = "skip"
	ToggleRemove = "remove"
	ToggleClear  = "clear"
	ToggleQueue  = "queue"
)

// ToggleKeys lists every recognised command toggle.
var ToggleKeys = []string{ToggleTTS, ToggleSong, ToggleSkip, ToggleRemove, ToggleClear, ToggleQueue}

// Overlay alignments.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Overlay width bounds in pixels.
const (
	MinQueueWidth = 320
	MaxQueueWidth = 960
)

// Theme slots.
const (
	ThemeOverlayBg     = "overlayBg"
	ThemeQueueBg       = "queueBg"
	ThemeTextPrimary   = "textPrimary"
	ThemeTextSecondary = "textSecondary"
)

// ThemeSlots lists every recognised theme slot.
var ThemeSlots = []string{ThemeOverlayBg, ThemeQueueBg, ThemeTextPrimary, ThemeTextSecondary}

// Alignment is the overlay queue placement.
type Alignment struct {
	Align string `json:"align"`
	Width int    `json:"width"`
}

// AlignmentUpdate is a partial alignment change. Nil fields are left alone.
type AlignmentUpdate struct {
	Align *string
	Width *float64
}

// Settings is the full persisted and broadcast settings record.
type Settings struct {
	CommandToggle map[string]bool   `json:"commandToggle"`
	Alignment     Alignment         `json:"alignment"`
	Theme         map[string]string `json:"theme"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s Settings) Clone() Settings {
	out := Settings{
		CommandToggle: make(map[string]bool, len(s.CommandToggle)),
		Alignment:     s.Alignment,
		Theme:         make(map[string]string, len(s.Theme)),
	}
	for k, v := range s.CommandToggle {
		out.CommandToggle[k] = v
	}
	for k, v := range s.Theme {
		out.Theme[k] = v
	}
	return out
}

// IsToggleKey reports whether key names a command toggle.
func IsToggleKey(key string) bool {
	for _, k := range ToggleKeys {
		if k == key {
			return true
		}
	}
	return false
}

// IsAlign reports whether align is a recognised alignment.
func IsAlign(align string) bool {
	switch align {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// ClampWidth bounds a width to [MinQueueWidth, MaxQueueWidth].
func ClampWidth(width int) int {
	if width < MinQueueWidth {
		return MinQueueWidth
	}
	if width > MaxQueueWidth {
		return MaxQueueWidth
	}
	return width
}
