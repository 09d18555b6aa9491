// Package attention derives the "needs attention" dashboard list from
// milestone and event snapshots. Pure derivation, recomputed on every
// call, never persisted.
package attention

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/causeplan/backend/internal/models"
)

// Type classifies why a milestone needs attention.
type Type string

const (
	TypeOverdue  Type = "OVERDUE"
	TypeBlocked  Type = "BLOCKED"
	TypeDueToday Type = "DUE_TODAY"
	TypeDueSoon  Type = "DUE_SOON"
)

// priorityRank orders attention types for the dashboard. Lower is more
// urgent.
var priorityRank = map[Type]int{
	TypeOverdue:  0,
	TypeBlocked:  1,
	TypeDueToday: 2,
	TypeDueSoon:  3,
}

// Item is one entry in the attention list.
type Item struct {
	Type         Type             `json:"type"`
	Milestone    models.Milestone `json:"milestone"`
	Event        *models.Event    `json:"event"`
	DaysUntilDue int              `json:"days_until_due"`
}

// dueSoonWindow is the number of days ahead still considered attention
// worthy for non-blocked milestones.
const dueSoonWindow = 3

// Build classifies every open milestone and returns the prioritized
// attention list. COMPLETED and SKIPPED milestones are ignored. BLOCKED
// wins over any date-derived classification. A milestone whose parent
// event is not in the snapshot is silently dropped. The sort is stable so
// equally ranked items keep their input order.
func Build(milestones []models.Milestone, events []*models.Event, now time.Time) []Item {
	byID := make(map[uuid.UUID]*models.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	items := make([]Item, 0, len(milestones))
	for _, m := range milestones {
		if m.Status == models.MilestoneCompleted || m.Status == models.MilestoneSkipped {
			continue
		}
		event, ok := byID[m.EventID]
		if !ok {
			continue
		}

		days := daysUntilDue(m.DueDate, now)
		var t Type
		switch {
		case m.Status == models.MilestoneBlocked:
			t = TypeBlocked
		case days < 0:
			t = TypeOverdue
		case days == 0:
			t = TypeDueToday
		case days <= dueSoonWindow:
			t = TypeDueSoon
		default:
			continue
		}

		items = append(items, Item{Type: t, Milestone: m, Event: event, DaysUntilDue: days})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank[items[i].Type] < priorityRank[items[j].Type]
	})
	return items
}

// daysUntilDue compares calendar dates only; time of day never matters.
func daysUntilDue(dueDate, now time.Time) int {
	due := startOfDay(dueDate)
	today := startOfDay(now)
	return int(due.Sub(today).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
