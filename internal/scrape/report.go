package scrape

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecomlens/reviewradar/pkg/model"
)

// BuildReport wraps a batch's surviving results with status, wall-clock
// duration and a generation timestamp. Pure formatting; no decision logic.
func BuildReport(batchID uuid.UUID, results []model.CombinedResult, start time.Time) *model.BatchReport {
	if results == nil {
		results = []model.CombinedResult{}
	}
	return &model.BatchReport{
		BatchID:         batchID,
		Status:          "success",
		DurationSeconds: time.Since(start).Seconds(),
		Results:         results,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
}
