package domain

import (
	"encoding/json"
	"strconv"
)

// HTTP request and response bodies for the queue API.

// AddSongRequest keeps its fields raw: numeric and boolean titles are
// queued as text, and a non-string requester falls back to the default.
type AddSongRequest struct {
	Title json.RawMessage `json:"title"`
	By    json.RawMessage `json:"by"`
}

// TitleText returns the title as text. Missing, null, object and array
// titles yield "".
func (r AddSongRequest) TitleText() string {
	switch x := decodeRaw(r.Title).(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Requester returns the requester name, or "" when it is not a string.
func (r AddSongRequest) Requester() string {
	by, _ := decodeRaw(r.By).(string)
	return by
}

// RemoveSongRequest accepts the position as a JSON number or numeric string.
type RemoveSongRequest struct {
	Index json.Number `json:"index"`
}

type AddSongResponse struct {
	Added QueueItem `json:"added"`
	Size  int       `json:"size"`
}

type SkipSongResponse struct {
	Skipped QueueItem `json:"skipped"`
	Size    int       `json:"size"`
}

type RemoveSongResponse struct {
	Removed QueueItem `json:"removed"`
	Size    int       `json:"size"`
}

type ClearQueueResponse struct {
	Cleared bool `json:"cleared"`
}

type AnnounceResponse struct {
	Announced string `json:"announced"`
}
