package ingest

import (
	"strings"

	"github.com/beaconlabs/beacon/internal/models"
)

// Keyword lists are matched as substrings against the lowercased event
// name. The revenue check runs before the content check: an event name
// matching both (e.g. "payment_for_chapter") classifies as revenue.
// That precedence is a contract, not an accident.
var (
	revenueKeywords = []string{
		"purchase_completed",
		"coins_purchased",
		"subscription_started",
		"subscription_cancelled",
		"payment_failed",
		"refund_processed",
		"revenue",
		"payment",
	}

	contentKeywords = []string{
		"chapter_opened",
		"chapter_completed",
		"page_viewed",
		"reading_session",
		"flick_started",
		"flick_completed",
		"watch_progress",
		"content_liked",
		"content_shared",
		"content_saved",
		"chapter",
		"flick",
		"episode",
	}
)

// Classify maps an event name to exactly one dataset. Total and
// deterministic; user_behavior is the fallback.
func Classify(eventName string) models.Dataset {
	name := strings.ToLower(eventName)

	for _, kw := range revenueKeywords {
		if strings.Contains(name, kw) {
			return models.DatasetRevenue
		}
	}
	for _, kw := range contentKeywords {
		if strings.Contains(name, kw) {
			return models.DatasetContent
		}
	}
	return models.DatasetUserBehavior
}
