package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

func eventMilestones(titles ...string) []models.Milestone {
	out := make([]models.Milestone, len(titles))
	for i, t := range titles {
		out[i] = models.Milestone{Title: t}
	}
	return out
}

func templateMilestones(titles ...string) []models.MilestoneTemplate {
	out := make([]models.MilestoneTemplate, len(titles))
	for i, t := range titles {
		out[i] = models.MilestoneTemplate{Title: t}
	}
	return out
}

func TestDiff_IdenticalTitlesYieldEmptyDiff(t *testing.T) {
	ev := eventMilestones("Book venue", "Order catering", "Print flyers")
	tm := templateMilestones("Book venue", "Order catering", "Print flyers")
	assert.Empty(t, Diff(ev, tm))
}

func TestDiff_CaseInsensitiveMatch(t *testing.T) {
	ev := eventMilestones("BOOK VENUE")
	tm := templateMilestones("book venue")
	assert.Empty(t, Diff(ev, tm))
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	ev := eventMilestones("Book venue", "Hire photographer")
	tm := templateMilestones("Book venue", "Order catering")

	diffs := Diff(ev, tm)
	require.Len(t, diffs, 2)

	assert.Equal(t, DiffAdded, diffs[0].Type)
	assert.Equal(t, "Hire photographer", diffs[0].Title)
	require.NotNil(t, diffs[0].EventMilestone)
	assert.True(t, diffs[0].SelectedByDefault, "additions default to selected")

	assert.Equal(t, DiffRemoved, diffs[1].Type)
	assert.Equal(t, "Order catering", diffs[1].Title)
	require.NotNil(t, diffs[1].TemplateMilestone)
	assert.False(t, diffs[1].SelectedByDefault, "removals require explicit confirmation")
}

func TestDiff_Symmetry(t *testing.T) {
	ev := eventMilestones("A", "B", "C")
	tm := templateMilestones("B", "C", "D")

	forward := Diff(ev, tm)
	backward := Diff(eventMilestones("B", "C", "D"), templateMilestones("A", "B", "C"))

	var forwardAdded, backwardRemoved []string
	for _, d := range forward {
		if d.Type == DiffAdded {
			forwardAdded = append(forwardAdded, d.Title)
		}
	}
	for _, d := range backward {
		if d.Type == DiffRemoved {
			backwardRemoved = append(backwardRemoved, d.Title)
		}
	}
	assert.Equal(t, forwardAdded, backwardRemoved, "added titles become removed titles when sides swap")
}

func TestDiff_EmptyInputs(t *testing.T) {
	assert.Empty(t, Diff(nil, nil))

	onlyEvent := Diff(eventMilestones("Solo"), nil)
	require.Len(t, onlyEvent, 1)
	assert.Equal(t, DiffAdded, onlyEvent[0].Type)

	onlyTemplate := Diff(nil, templateMilestones("Solo"))
	require.Len(t, onlyTemplate, 1)
	assert.Equal(t, DiffRemoved, onlyTemplate[0].Type)
}

func TestDiff_DuplicateTitlesFirstMatchWins(t *testing.T) {
	// Two event milestones with the same title both match the single
	// template entry by presence, so neither is reported.
	ev := eventMilestones("Book venue", "Book venue")
	tm := templateMilestones("Book venue")
	assert.Empty(t, Diff(ev, tm))
}
