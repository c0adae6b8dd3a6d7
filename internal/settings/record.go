package settings

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether v is a #rrggbb color.
func IsHexColor(v string) bool {
	return hexColorRe.MatchString(v)
}

// Defaults returns the settings used before anything is persisted.
func Defaults(ttsEnabled bool) domain.Settings {
	return domain.Settings{
		CommandToggle: map[string]bool{
			domain.ToggleTTS:    ttsEnabled,
			domain.ToggleSong:   true,
			domain.ToggleSkip:   false,
			domain.ToggleRemove: false,
			domain.ToggleClear:  false,
			domain.ToggleQueue:  false,
		},
		Alignment: domain.Alignment{Align: domain.AlignCenter, Width: 560},
		Theme: map[string]string{
			domain.ThemeOverlayBg:     "#101827",
			domain.ThemeQueueBg:       "#1f2937",
			domain.ThemeTextPrimary:   "#ffffff",
			domain.ThemeTextSecondary: "#b3b3b3",
		},
	}
}

// clampWidth rounds a candidate width and bounds it. NaN and infinities
// are rejected.
func clampWidth(w float64) (int, bool) {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	if w < domain.MinQueueWidth {
		return domain.MinQueueWidth, true
	}
	if w > domain.MaxQueueWidth {
		return domain.MaxQueueWidth, true
	}
	return domain.ClampWidth(int(math.Round(w))), true
}

// mergeRecord applies every recognised, well-typed field of a persisted
// record onto base. Unknown keys, wrong types and bad formats are skipped
// one field at a time. An unparsable record leaves base untouched; the
// returned count is the number of fields dropped.
func mergeRecord(base domain.Settings, raw []byte) (domain.Settings, int) {
	out := base.Clone()
	if len(raw) == 0 {
		return out, 0
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return out, 1
	}

	dropped := 0

	if data, ok := top["commandToggle"]; ok {
		var toggles map[string]json.RawMessage
		if err := json.Unmarshal(data, &toggles); err != nil {
			dropped++
		}
		for key, v := range toggles {
			var enabled bool
			if !domain.IsToggleKey(key) || isNull(v) || json.Unmarshal(v, &enabled) != nil {
				dropped++
				continue
			}
			out.CommandToggle[key] = enabled
		}
	}

	if data, ok := top["alignment"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			dropped++
		}
		if v, ok := fields["align"]; ok {
			var align string
			if json.Unmarshal(v, &align) == nil && domain.IsAlign(align) {
				out.Alignment.Align = align
			} else {
				dropped++
			}
		}
		if v, ok := fields["width"]; ok {
			var w float64
			if !isNull(v) && json.Unmarshal(v, &w) == nil {
				if width, ok := clampWidth(w); ok {
					out.Alignment.Width = width
				}
			} else {
				dropped++
			}
		}
	}

	if data, ok := top["theme"]; ok {
		var theme map[string]json.RawMessage
		if err := json.Unmarshal(data, &theme); err != nil {
			dropped++
		}
		for _, slot := range domain.ThemeSlots {
			v, ok := theme[slot]
			if !ok {
				continue
			}
			var color string
			if json.Unmarshal(v, &color) != nil || !IsHexColor(color) {
				dropped++
				continue
			}
			out.Theme[slot] = color
		}
	}

	return out, dropped
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// encodeRecord renders the persisted form of s.
func encodeRecord(s domain.Settings) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
