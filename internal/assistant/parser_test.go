package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causeplan/backend/internal/models"
)

const wellFormed = `Here is your plan.

<templateName>Community 5K Run</templateName>
<milestones>
[
  {"title": "Secure race route permit", "description": "City parks department", "category": "PERMITS", "days_before_event": 120, "estimated_hours": 6},
  {"title": "Recruit volunteers", "category": "VOLUNTEERS", "days_before_event": 45}
]
</milestones>

Good luck with the event!`

func TestParsePlan_WellFormed(t *testing.T) {
	plan, err := ParsePlan(wellFormed)
	require.NoError(t, err)

	assert.Equal(t, "Community 5K Run", plan.TemplateName)
	require.Len(t, plan.Milestones, 2)
	assert.Equal(t, "Secure race route permit", plan.Milestones[0].Title)
	assert.Equal(t, models.CategoryPermits, plan.Milestones[0].Category)
	assert.Equal(t, 120, plan.Milestones[0].DaysBeforeEvent)
	require.NotNil(t, plan.Milestones[0].EstimatedHours)
	assert.Equal(t, 6.0, *plan.Milestones[0].EstimatedHours)
	assert.Nil(t, plan.Milestones[1].EstimatedHours)
}

func TestParsePlan_CamelCaseKeys(t *testing.T) {
	raw := `<milestones>[
		{"title": "Book venue", "category": "VENUE", "daysBeforeEvent": 90, "estimatedHours": 4},
		{"title": "Order catering", "category": "CATERING", "daysBeforeEvent": 30}
	]</milestones>`

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 2)
	assert.Equal(t, 90, plan.Milestones[0].DaysBeforeEvent)
	require.NotNil(t, plan.Milestones[0].EstimatedHours)
	assert.Equal(t, 4.0, *plan.Milestones[0].EstimatedHours)
	assert.Equal(t, 30, plan.Milestones[1].DaysBeforeEvent)
	assert.Nil(t, plan.Milestones[1].EstimatedHours)
}

func TestParsePlan_MissingLeadTimeDropped(t *testing.T) {
	raw := `<milestones>[
		{"title": "No offset at all"},
		{"title": "Keep me", "daysBeforeEvent": 7}
	]</milestones>`

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 1)
	assert.Equal(t, "Keep me", plan.Milestones[0].Title)
}

func TestParsePlan_MarkdownFencedJSON(t *testing.T) {
	raw := "<templateName>Gala</templateName>\n<milestones>\n```json\n" +
		`[{"title": "Book venue", "category": "VENUE", "days_before_event": 90}]` +
		"\n```\n</milestones>"

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 1)
	assert.Equal(t, "Book venue", plan.Milestones[0].Title)
}

func TestParsePlan_UnknownCategoryFallsBackToGeneral(t *testing.T) {
	raw := `<milestones>[{"title": "Do the thing", "category": "FUNDRAISING", "days_before_event": 10}]</milestones>`

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 1)
	assert.Equal(t, models.CategoryGeneral, plan.Milestones[0].Category)
}

func TestParsePlan_DropsUnusableEntries(t *testing.T) {
	raw := `<milestones>[
		{"title": "  ", "days_before_event": 10},
		{"title": "Negative offset", "days_before_event": -5},
		{"title": "Keep me", "days_before_event": 7}
	]</milestones>`

	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Milestones, 1)
	assert.Equal(t, "Keep me", plan.Milestones[0].Title)
}

func TestParsePlan_MissingMilestonesBlock(t *testing.T) {
	_, err := ParsePlan("Sorry, I cannot help with that.")
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParsePlan_InvalidJSON(t *testing.T) {
	_, err := ParsePlan(`<milestones>not json at all</milestones>`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParsePlan_AllEntriesUnusable(t *testing.T) {
	_, err := ParsePlan(`<milestones>[{"title": "", "days_before_event": 3}]</milestones>`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParsePlan_MissingTemplateNameIsTolerated(t *testing.T) {
	raw := `<milestones>[{"title": "Book venue", "days_before_event": 90}]</milestones>`
	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	assert.Empty(t, plan.TemplateName)
}
