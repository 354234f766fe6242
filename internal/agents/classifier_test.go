package agents

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTravelPlanningTask(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"trip keyword", "Plan a trip to Paris for 5 days", true},
		{"poem", "Write a poem about the sea", false},
		{"empty", "", false},
		{"uppercase keyword", "ITINERARY for my honeymoon", true},
		{"multi word keyword", "Ideas for a city break in spring", true},
		{"cue plus place", "I want to visit Tokyo in April", true},
		{"go to plus place", "We should go to Scotland next summer", true},
		{"place without cue", "Summarize the history of Rome", false},
		{"cue without known place", "I want to visit Lisbon", false},
		{"false positive on keyword", "Explain time travel paradoxes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsTravelPlanningTask(tt.text))
		})
	}
}

func TestIsTravelPlanningTaskDeterministic(t *testing.T) {
	inputs := []string{"Plan a trip to Paris for 5 days", "Write a poem about the sea", "visit london"}
	for _, in := range inputs {
		first := IsTravelPlanningTask(in)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, IsTravelPlanningTask(in), in)
		}
	}
}
