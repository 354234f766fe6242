package agents

import "strings"

var travelKeywords = []string{
	"trip", "travel", "vacation", "holiday", "itinerary",
	"plan journey", "plan a visit", "plan my visit", "planning a visit",
	"visit to", "travel to", "holiday to", "journey to",
	"city break", "weekend away", "backpacking", "road trip",
}

var locationCues = []string{"visit ", "go to ", "travel to "}

// gazetteer is deliberately small; unlisted destinations only match through keywords.
var gazetteer = []string{"paris", "london", "tokyo", "rome", "japan", "italy", "scotland", "europe"}

// IsTravelPlanningTask is a best-effort keyword gate: exact substring checks on
// the lower-cased text, no fuzzy matching.
func IsTravelPlanningTask(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	if containsAny(lower, travelKeywords) {
		return true
	}
	return containsAny(lower, locationCues) && containsAny(lower, gazetteer)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
