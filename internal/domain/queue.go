package domain

// DefaultRequester is used when a song request carries no display name.
const DefaultRequester = "Streamer"

// MaxTitleLength caps a sanitized title, counted in characters after escaping.
const MaxTitleLength = 120

// QueueItem is one song request.
type QueueItem struct {
	Title string `json:"title"`
	By    string `json:"by"`
}
