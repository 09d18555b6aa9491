package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyDiffs_EmptySelectionRejected(t *testing.T) {
	current := templateMilestones("Book venue")
	_, _, err := ApplyDiffs(current, nil, date(2026, time.June, 15))
	assert.ErrorIs(t, err, ErrNoDiffsSelected)

	_, _, err = ApplyDiffs(current, []MilestoneDiff{}, date(2026, time.June, 15))
	assert.ErrorIs(t, err, ErrNoDiffsSelected)
}

func TestApplyDiffs_AddedComputesDaysBeforeEvent(t *testing.T) {
	eventDate := date(2026, time.June, 15)
	added := MilestoneDiff{
		Type:  DiffAdded,
		Title: "Book venue",
		EventMilestone: &models.Milestone{
			Title:       "Book venue",
			Description: "Call three venues",
			Category:    models.CategoryVenue,
			DueDate:     date(2026, time.March, 17), // 90 days before
		},
	}

	working, changelog, err := ApplyDiffs(nil, []MilestoneDiff{added}, eventDate)
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, 90, working[0].DaysBeforeEvent)
	assert.Equal(t, "Book venue", working[0].Title)
	assert.Equal(t, models.CategoryVenue, working[0].Category)
	assert.Equal(t, `Added "Book venue"`, changelog)
}

func TestApplyDiffs_AddedKeepsAIGeneratedFlag(t *testing.T) {
	eventDate := date(2026, time.June, 15)
	added := MilestoneDiff{
		Type:  DiffAdded,
		Title: "Recruit volunteers",
		EventMilestone: &models.Milestone{
			Title:         "Recruit volunteers",
			DueDate:       date(2026, time.May, 1),
			IsAIGenerated: true,
		},
	}

	working, _, err := ApplyDiffs(nil, []MilestoneDiff{added}, eventDate)
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.True(t, working[0].IsAIGenerated)
}

func TestApplyDiffs_DueDateAfterEventClampsToZero(t *testing.T) {
	eventDate := date(2026, time.June, 15)
	added := MilestoneDiff{
		Type:  DiffAdded,
		Title: "Send thank-you notes",
		EventMilestone: &models.Milestone{
			Title:   "Send thank-you notes",
			DueDate: date(2026, time.June, 20),
		},
	}
	working, _, err := ApplyDiffs(nil, []MilestoneDiff{added}, eventDate)
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, 0, working[0].DaysBeforeEvent)
}

func TestApplyDiffs_RemovedMatchesCaseInsensitively(t *testing.T) {
	current := []models.MilestoneTemplate{
		{Title: "Book Venue", DaysBeforeEvent: 90},
		{Title: "Order catering", DaysBeforeEvent: 30},
	}
	removed := MilestoneDiff{Type: DiffRemoved, Title: "book venue"}

	working, changelog, err := ApplyDiffs(current, []MilestoneDiff{removed}, date(2026, time.June, 15))
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, "Order catering", working[0].Title)
	assert.Equal(t, `Removed "book venue"`, changelog)
}

func TestApplyDiffs_SortedByLeadTimeDescending(t *testing.T) {
	eventDate := date(2026, time.June, 15)
	current := []models.MilestoneTemplate{
		{Title: "Order catering", DaysBeforeEvent: 30},
		{Title: "Book venue", DaysBeforeEvent: 90},
	}
	added := MilestoneDiff{
		Type:  DiffAdded,
		Title: "Apply for permit",
		EventMilestone: &models.Milestone{
			Title:   "Apply for permit",
			DueDate: date(2026, time.April, 16), // 60 days before
		},
	}

	working, _, err := ApplyDiffs(current, []MilestoneDiff{added}, eventDate)
	require.NoError(t, err)
	require.Len(t, working, 3)

	assert.Equal(t, "Book venue", working[0].Title)
	assert.Equal(t, "Apply for permit", working[1].Title)
	assert.Equal(t, "Order catering", working[2].Title)
	for i, mt := range working {
		assert.Equal(t, i, mt.SortOrder)
	}
}

func TestApplyDiffs_ChangelogJoinsEntriesInSelectionOrder(t *testing.T) {
	eventDate := date(2026, time.June, 15)
	current := templateMilestones("Order catering")
	selected := []MilestoneDiff{
		{Type: DiffRemoved, Title: "Order catering"},
		{Type: DiffAdded, Title: "Recruit volunteers", EventMilestone: &models.Milestone{
			Title: "Recruit volunteers", DueDate: date(2026, time.May, 16),
		}},
	}

	working, changelog, err := ApplyDiffs(current, selected, eventDate)
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, `Removed "Order catering", Added "Recruit volunteers"`, changelog)
}

func TestApplyDiffs_AddedWithoutEventMilestoneFails(t *testing.T) {
	_, _, err := ApplyDiffs(nil, []MilestoneDiff{{Type: DiffAdded, Title: "orphan"}}, date(2026, time.June, 15))
	assert.Error(t, err)
}

func TestApplyDiffs_DoesNotMutateCurrent(t *testing.T) {
	current := []models.MilestoneTemplate{
		{Title: "Book venue", DaysBeforeEvent: 90, SortOrder: 0},
		{Title: "Order catering", DaysBeforeEvent: 30, SortOrder: 1},
	}
	removed := MilestoneDiff{Type: DiffRemoved, Title: "Book venue"}

	_, _, err := ApplyDiffs(current, []MilestoneDiff{removed}, date(2026, time.June, 15))
	require.NoError(t, err)
	assert.Equal(t, "Book venue", current[0].Title)
	assert.Equal(t, "Order catering", current[1].Title)
}
