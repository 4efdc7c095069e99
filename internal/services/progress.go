package services

import (
	"math"

	"github.com/yungbote/pathforge-backend/internal/types"
)

// TopicCounts walks a phases tree once and tallies totals. Completed counts
// topics whose status is done.
func TopicCounts(phases []types.PhaseDoc) (total int, completed int, totalMinutes int) {
	for _, phase := range phases {
		for _, topic := range phase.Topics {
			total++
			totalMinutes += topic.EstimatedMinutes
			if topic.Status == types.TopicStatusDone {
				completed++
			}
		}
	}
	return total, completed, totalMinutes
}

// ProgressPercentage returns the completion percentage rounded to the
// nearest integer, and 0 when there are no topics.
func ProgressPercentage(completed int, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// HoursLearned converts minutes to hours rounded to one decimal place.
func HoursLearned(totalMinutes int) float64 {
	return math.Round(float64(totalMinutes)/60*10) / 10
}
