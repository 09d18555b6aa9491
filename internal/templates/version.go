package templates

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/causeplan/backend/internal/models"
)

// ErrNoDiffsSelected rejects version creation with nothing to apply.
// Publishing a version identical to its predecessor is disallowed.
var ErrNoDiffsSelected = errors.New("no changes selected")

// ApplyDiffs produces the next version's milestone set and changelog from
// the template's current set and the user-confirmed diff entries.
//
// Added entries derive a milestone template from the event milestone, with
// days_before_event = max(0, round(event_date − due_date)) in whole days.
// Removed entries drop every working-set entry with a case-insensitive
// title match. The result is ordered by days_before_event descending:
// longest-lead-time tasks come first, which is the canonical stored order.
func ApplyDiffs(current []models.MilestoneTemplate, selected []MilestoneDiff, eventDate time.Time) ([]models.MilestoneTemplate, string, error) {
	if len(selected) == 0 {
		return nil, "", ErrNoDiffsSelected
	}

	working := make([]models.MilestoneTemplate, len(current))
	copy(working, current)

	entries := make([]string, 0, len(selected))
	for _, d := range selected {
		switch d.Type {
		case DiffAdded:
			if d.EventMilestone == nil {
				return nil, "", fmt.Errorf("added diff %q has no event milestone", d.Title)
			}
			m := d.EventMilestone
			working = append(working, models.MilestoneTemplate{
				Title:           m.Title,
				Description:     m.Description,
				Category:        m.Category,
				DaysBeforeEvent: daysBeforeEvent(eventDate, m.DueDate),
				IsAIGenerated:   m.IsAIGenerated,
			})
			entries = append(entries, fmt.Sprintf("Added %q", d.Title))
		case DiffRemoved:
			working = removeByTitle(working, d.Title)
			entries = append(entries, fmt.Sprintf("Removed %q", d.Title))
		default:
			return nil, "", fmt.Errorf("unknown diff type %q", d.Type)
		}
	}

	sort.SliceStable(working, func(i, j int) bool {
		return working[i].DaysBeforeEvent > working[j].DaysBeforeEvent
	})
	for i := range working {
		working[i].SortOrder = i
	}

	return working, strings.Join(entries, ", "), nil
}

// daysBeforeEvent is the whole-day lead time of a due date relative to the
// event date, clamped at zero.
func daysBeforeEvent(eventDate, dueDate time.Time) int {
	days := int(math.Round(eventDate.Sub(dueDate).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func removeByTitle(list []models.MilestoneTemplate, title string) []models.MilestoneTemplate {
	out := list[:0]
	for _, mt := range list {
		if !strings.EqualFold(mt.Title, title) {
			out = append(out, mt)
		}
	}
	return out
}
