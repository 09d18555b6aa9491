package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionEvent(t *testing.T) {
	cases := []struct {
		from, to EventStatus
		want     bool
	}{
		{EventPlanning, EventActive, true},
		{EventPlanning, EventCancelled, true},
		{EventPlanning, EventCompleted, false},
		{EventPlanning, EventArchived, false},
		{EventActive, EventCompleted, true},
		{EventActive, EventCancelled, true},
		{EventActive, EventPlanning, false},
		{EventCompleted, EventArchived, true},
		{EventCancelled, EventArchived, true},
		{EventCompleted, EventActive, false},
		{EventArchived, EventPlanning, false},
		{EventArchived, EventActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransitionEvent(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionEvent_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransitionEvent(EventStatus("DRAFT"), EventActive))
	assert.False(t, CanTransitionEvent(EventPlanning, EventStatus("DRAFT")))
}
