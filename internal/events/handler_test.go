package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

func TestCopyFromTemplate_DueDatesFromLeadTime(t *testing.T) {
	eventDate := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	source := []models.MilestoneTemplate{
		{Title: "Book venue", Category: models.CategoryVenue, DaysBeforeEvent: 90, IsAIGenerated: true},
		{Title: "Day-of setup", Category: models.CategoryLogistics, DaysBeforeEvent: 0},
	}

	out := CopyFromTemplate(source, eventDate)
	require.Len(t, out, 2)

	// 90 days before 2026-06-15 crosses March and April month lengths.
	assert.Equal(t, time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC), out[0].DueDate)
	assert.Equal(t, eventDate, out[1].DueDate)
	assert.Equal(t, models.MilestoneNotStarted, out[0].Status)
	assert.True(t, out[0].IsAIGenerated)
	assert.False(t, out[1].IsAIGenerated)
	assert.Equal(t, 0, out[0].SortOrder)
	assert.Equal(t, 1, out[1].SortOrder)
}

func TestCopyFromTemplate_Empty(t *testing.T) {
	out := CopyFromTemplate(nil, time.Now())
	assert.Empty(t, out)
}
