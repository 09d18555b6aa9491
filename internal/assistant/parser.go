package assistant

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/causeplan/backend/internal/models"
)

// ErrUnparseable is returned when the model's output does not contain a
// usable milestones block.
var ErrUnparseable = errors.New("could not parse milestones from model output")

// PlanMilestone is one suggested milestone from the model.
type PlanMilestone struct {
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Category        models.MilestoneCategory `json:"category"`
	DaysBeforeEvent int                      `json:"days_before_event"`
	EstimatedHours  *float64                 `json:"estimated_hours,omitempty"`
}

// Plan is a parsed milestone plan.
type Plan struct {
	TemplateName string          `json:"template_name"`
	Milestones   []PlanMilestone `json:"milestones"`
}

// rawMilestone tolerates the key drift models produce: the documented
// format is camelCase, but snake_case slips in often enough to accept as
// an alias.
type rawMilestone struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	DaysBeforeEvent      *int     `json:"daysBeforeEvent"`
	DaysBeforeEventSnake *int     `json:"days_before_event"`
	EstimatedHours       *float64 `json:"estimatedHours"`
	EstimatedHoursSnake  *float64 `json:"estimated_hours"`
}

func (m rawMilestone) daysBeforeEvent() (int, bool) {
	if m.DaysBeforeEvent != nil {
		return *m.DaysBeforeEvent, true
	}
	if m.DaysBeforeEventSnake != nil {
		return *m.DaysBeforeEventSnake, true
	}
	return 0, false
}

func (m rawMilestone) estimatedHours() *float64 {
	if m.EstimatedHours != nil {
		return m.EstimatedHours
	}
	return m.EstimatedHoursSnake
}

// ParsePlan extracts the <templateName> and <milestones> blocks from raw
// model output. Milestones with an empty title, a missing lead time, or a
// negative offset are dropped, unknown categories fall back to GENERAL,
// and a response with no usable milestones at all is a parse failure.
func ParsePlan(raw string) (*Plan, error) {
	milestonesBlock, ok := extractBlock(raw, "milestones")
	if !ok {
		return nil, ErrUnparseable
	}

	var parsed []rawMilestone
	if err := json.Unmarshal([]byte(milestonesBlock), &parsed); err != nil {
		return nil, ErrUnparseable
	}

	milestones := make([]PlanMilestone, 0, len(parsed))
	for _, m := range parsed {
		title := strings.TrimSpace(m.Title)
		days, ok := m.daysBeforeEvent()
		if title == "" || !ok || days < 0 {
			continue
		}
		milestones = append(milestones, PlanMilestone{
			Title:           title,
			Description:     strings.TrimSpace(m.Description),
			Category:        models.ParseCategory(m.Category),
			DaysBeforeEvent: days,
			EstimatedHours:  m.estimatedHours(),
		})
	}
	if len(milestones) == 0 {
		return nil, ErrUnparseable
	}

	name, _ := extractBlock(raw, "templateName")
	return &Plan{
		TemplateName: strings.TrimSpace(name),
		Milestones:   milestones,
	}, nil
}

// extractBlock returns the text between <tag> and </tag>, tolerating
// surrounding prose and markdown fences.
func extractBlock(raw, tag string) (string, bool) {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	start := strings.Index(raw, openTag)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(openTag):]
	end := strings.Index(rest, closeTag)
	if end < 0 {
		return "", false
	}
	block := strings.TrimSpace(rest[:end])
	block = strings.TrimPrefix(block, "```json")
	block = strings.TrimPrefix(block, "```")
	block = strings.TrimSuffix(block, "```")
	return strings.TrimSpace(block), true
}
