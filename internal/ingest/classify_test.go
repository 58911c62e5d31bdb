package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beaconlabs/beacon/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		event string
		want  models.Dataset
	}{
		{"purchase_completed", models.DatasetRevenue},
		{"coins_purchased", models.DatasetRevenue},
		{"subscription_started", models.DatasetRevenue},
		{"subscription_cancelled", models.DatasetRevenue},
		{"payment_failed", models.DatasetRevenue},
		{"refund_processed", models.DatasetRevenue},
		{"ad_revenue_reported", models.DatasetRevenue},

		{"chapter_opened", models.DatasetContent},
		{"chapter_completed", models.DatasetContent},
		{"page_viewed", models.DatasetContent},
		{"reading_session", models.DatasetContent},
		{"flick_started", models.DatasetContent},
		{"flick_completed", models.DatasetContent},
		{"watch_progress", models.DatasetContent},
		{"content_liked", models.DatasetContent},
		{"episode_paused", models.DatasetContent},

		{"login", models.DatasetUserBehavior},
		{"app_opened", models.DatasetUserBehavior},
		{"search_performed", models.DatasetUserBehavior},
		{"", models.DatasetUserBehavior},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.event))
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	assert.Equal(t, models.DatasetRevenue, Classify("Purchase_Completed"))
	assert.Equal(t, models.DatasetContent, Classify("CHAPTER_OPENED"))
}

// Event names matching both keyword sets are deliberately ambiguous;
// the revenue check runs first and wins. Guard the precedence, don't
// resolve it.
func TestClassifyPrecedence(t *testing.T) {
	assert.Equal(t, models.DatasetRevenue, Classify("payment_for_chapter"))
	assert.Equal(t, models.DatasetRevenue, Classify("chapter_revenue_shared"))
}
