package queue

import (
	"strings"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

// SummaryLimit is how many upcoming titles a summary lists.
const SummaryLimit = 5

// EmptySummary is shown in place of titles when nothing is queued.
const EmptySummary = "empty"

// Summarize joins the titles of items with " | ", or returns EmptySummary.
func Summarize(items []domain.QueueItem) string {
	if len(items) == 0 {
		return EmptySummary
	}
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	return strings.Join(titles, " | ")
}
