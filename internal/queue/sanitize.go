package queue

import (
	"html"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

// SanitizeTitle trims and HTML-escapes a raw title and caps the result at
// domain.MaxTitleLength characters. An escape entity is either kept whole
// or dropped, so truncation never leaves a dangling '&'.
func SanitizeTitle(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	n := 0
	for _, r := range trimmed {
		piece := html.EscapeString(string(r))
		width := utf8.RuneCountInString(piece)
		if n+width > domain.MaxTitleLength {
			break
		}
		b.WriteString(piece)
		n += width
	}
	return strings.TrimSpace(b.String())
}

func normalizeRequester(by string) string {
	by = strings.TrimSpace(by)
	if by == "" {
		return domain.DefaultRequester
	}
	return by
}

// ParsePosition parses a 1-based queue position. Integral numbers such as
// "2" or "2.0" are accepted; range is checked by the store.
func ParsePosition(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
