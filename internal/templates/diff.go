package templates

import (
	"strings"

	"github.com/causeplan/backend/internal/models"
)

// DiffType marks a diff entry as an event-side addition or a
// template-side removal.
type DiffType string

const (
	DiffAdded   DiffType = "added"
	DiffRemoved DiffType = "removed"
)

// MilestoneDiff is one title-level difference between an event's milestone
// list and its source template's milestone list. Additions default to
// selected; removals require explicit confirmation and default to
// unselected.
type MilestoneDiff struct {
	Type              DiffType                  `json:"type"`
	Title             string                    `json:"title"`
	EventMilestone    *models.Milestone         `json:"event_milestone,omitempty"`
	TemplateMilestone *models.MilestoneTemplate `json:"template_milestone,omitempty"`
	SelectedByDefault bool                      `json:"selected_by_default"`
}

// Diff computes the symmetric difference by title between an event's
// milestones and a template's milestones. Matching is case-insensitive and
// first-match: duplicate titles pair up in list order. Milestones present
// on both sides are not reported — field-level edits to a matched title
// are invisible to this comparison.
func Diff(eventMilestones []models.Milestone, templateMilestones []models.MilestoneTemplate) []MilestoneDiff {
	var diffs []MilestoneDiff

	for i := range eventMilestones {
		m := &eventMilestones[i]
		if !containsTemplateTitle(templateMilestones, m.Title) {
			diffs = append(diffs, MilestoneDiff{
				Type:              DiffAdded,
				Title:             m.Title,
				EventMilestone:    m,
				SelectedByDefault: true,
			})
		}
	}

	for i := range templateMilestones {
		t := &templateMilestones[i]
		if !containsMilestoneTitle(eventMilestones, t.Title) {
			diffs = append(diffs, MilestoneDiff{
				Type:              DiffRemoved,
				Title:             t.Title,
				TemplateMilestone: t,
				SelectedByDefault: false,
			})
		}
	}

	return diffs
}

func containsTemplateTitle(list []models.MilestoneTemplate, title string) bool {
	for i := range list {
		if strings.EqualFold(list[i].Title, title) {
			return true
		}
	}
	return false
}

func containsMilestoneTitle(list []models.Milestone, title string) bool {
	for i := range list {
		if strings.EqualFold(list[i].Title, title) {
			return true
		}
	}
	return false
}
