package attention

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

var testNow = time.Date(2026, time.May, 10, 14, 30, 0, 0, time.UTC)

func testEvent() *models.Event {
	return &models.Event{
		ID:     uuid.New(),
		Title:  "Spring Gala",
		Status: models.EventActive,
	}
}

func milestone(event *models.Event, due time.Time, status models.MilestoneStatus) models.Milestone {
	return models.Milestone{
		ID:      uuid.New(),
		EventID: event.ID,
		Title:   "Book venue",
		DueDate: due,
		Status:  status,
	}
}

func TestBuild_DueYesterdayIsOverdue(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, -1), models.MilestoneNotStarted),
	}, []*models.Event{e}, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, TypeOverdue, items[0].Type)
	assert.Equal(t, -1, items[0].DaysUntilDue)
}

func TestBuild_DueTodayIgnoresTimeOfDay(t *testing.T) {
	e := testEvent()
	// Due at 23:59 today while "now" is mid-afternoon.
	due := time.Date(2026, time.May, 10, 23, 59, 0, 0, time.UTC)
	items := Build([]models.Milestone{
		milestone(e, due, models.MilestoneInProgress),
	}, []*models.Event{e}, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, TypeDueToday, items[0].Type)
	assert.Equal(t, 0, items[0].DaysUntilDue)
}

func TestBuild_DueInTwoDaysIsDueSoon(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, 2), models.MilestoneNotStarted),
	}, []*models.Event{e}, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, TypeDueSoon, items[0].Type)
	assert.Equal(t, 2, items[0].DaysUntilDue)
}

func TestBuild_DueInTenDaysIsExcluded(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, 10), models.MilestoneNotStarted),
	}, []*models.Event{e}, testNow)
	assert.Empty(t, items)
}

func TestBuild_BlockedBeatsDistantDueDate(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, 30), models.MilestoneBlocked),
	}, []*models.Event{e}, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, TypeBlocked, items[0].Type)
}

func TestBuild_BlockedBeatsOverdueDate(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, -5), models.MilestoneBlocked),
	}, []*models.Event{e}, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, TypeBlocked, items[0].Type)
}

func TestBuild_CompletedAndSkippedExcluded(t *testing.T) {
	e := testEvent()
	items := Build([]models.Milestone{
		milestone(e, testNow.AddDate(0, 0, -1), models.MilestoneCompleted),
		milestone(e, testNow.AddDate(0, 0, -1), models.MilestoneSkipped),
	}, []*models.Event{e}, testNow)
	assert.Empty(t, items)
}

func TestBuild_OrphanMilestoneSilentlyDropped(t *testing.T) {
	e := testEvent()
	orphan := milestone(e, testNow.AddDate(0, 0, -1), models.MilestoneNotStarted)
	orphan.EventID = uuid.New()

	items := Build([]models.Milestone{orphan}, []*models.Event{e}, testNow)
	assert.Empty(t, items)
}

func TestBuild_PriorityOrderAndStability(t *testing.T) {
	e := testEvent()
	dueSoon := milestone(e, testNow.AddDate(0, 0, 2), models.MilestoneNotStarted)
	overdue := milestone(e, testNow.AddDate(0, 0, -3), models.MilestoneNotStarted)
	blocked := milestone(e, testNow.AddDate(0, 0, 5), models.MilestoneBlocked)
	dueToday := milestone(e, testNow, models.MilestoneInProgress)
	overdueLater := milestone(e, testNow.AddDate(0, 0, -1), models.MilestoneNotStarted)

	items := Build([]models.Milestone{dueSoon, overdue, blocked, dueToday, overdueLater},
		[]*models.Event{e}, testNow)

	require.Len(t, items, 5)
	assert.Equal(t, TypeOverdue, items[0].Type)
	assert.Equal(t, TypeOverdue, items[1].Type)
	assert.Equal(t, TypeBlocked, items[2].Type)
	assert.Equal(t, TypeDueToday, items[3].Type)
	assert.Equal(t, TypeDueSoon, items[4].Type)

	// Stable sort keeps input order within the same rank.
	assert.Equal(t, overdue.ID, items[0].Milestone.ID)
	assert.Equal(t, overdueLater.ID, items[1].Milestone.ID)
}

func TestBuild_EmptyInput(t *testing.T) {
	assert.Empty(t, Build(nil, nil, testNow))
}
