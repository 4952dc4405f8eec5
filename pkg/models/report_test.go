package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brunodantas/onion-tasks/pkg/models"
)

func cost(amount int64) *models.Cost {
	return &models.Cost{Amount: amount, Unit: "points"}
}

func TestTrackStatuses(t *testing.T) {
	tasks := []models.Task{
		{ID: "a", Status: models.PendingTaskStatus},
		{ID: "b", Status: models.PendingTaskStatus},
		{ID: "c", Status: models.InProgressTaskStatus},
		{ID: "d", Status: models.CompletedTaskStatus},
	}
	counts := models.TrackStatuses(tasks)
	assert.Equal(t, 2, counts[models.PendingTaskStatus])
	assert.Equal(t, 1, counts[models.InProgressTaskStatus])
	assert.Equal(t, 1, counts[models.CompletedTaskStatus])
	assert.Equal(t, 0, counts[models.CancelledTaskStatus])
}

func TestMakespanBoundaries(t *testing.T) {
	min, max := models.MakespanBoundaries(nil)
	assert.Equal(t, int64(0), min)
	assert.Equal(t, int64(0), max)

	tasks := []models.Task{
		{ID: "a", Cost: cost(3)},
		{ID: "b", Cost: cost(5)},
		{ID: "c", Cost: cost(2)},
		{ID: "d"}, // no cost
	}
	min, max = models.MakespanBoundaries(tasks)
	assert.Equal(t, int64(5), min, "best case is the largest single cost")
	assert.Equal(t, int64(10), max, "worst case is the sum of all costs")
}
