package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

func TestMatchSelections_RepeatedSelectionAppliesOnce(t *testing.T) {
	diffs := []MilestoneDiff{
		{Type: DiffAdded, Title: "Book venue", EventMilestone: &models.Milestone{Title: "Book venue"}},
		{Type: DiffRemoved, Title: "Order catering"},
	}
	selections := []DiffSelection{
		{Type: DiffAdded, Title: "Book venue"},
		{Type: DiffAdded, Title: "book VENUE"}, // same entry, different case
		{Type: DiffRemoved, Title: "Order catering"},
		{Type: DiffRemoved, Title: "Order catering"},
	}

	out := matchSelections(diffs, selections)
	require.Len(t, out, 2)
	assert.Equal(t, DiffAdded, out[0].Type)
	assert.Equal(t, "Book venue", out[0].Title)
	assert.Equal(t, DiffRemoved, out[1].Type)
}

func TestMatchSelections_UnknownSelectionIgnored(t *testing.T) {
	diffs := []MilestoneDiff{
		{Type: DiffAdded, Title: "Book venue", EventMilestone: &models.Milestone{Title: "Book venue"}},
	}
	selections := []DiffSelection{
		{Type: DiffRemoved, Title: "Book venue"}, // wrong type
		{Type: DiffAdded, Title: "Not in the diff"},
	}

	assert.Empty(t, matchSelections(diffs, selections))
}
