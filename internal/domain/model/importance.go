package model

import "strings"

// Importance levels for events, highest first.
const (
	ImportanceOlympic  = 5
	ImportanceWorld    = 4
	ImportanceMajor    = 3
	ImportanceRegional = 2
	ImportanceLocal    = 1
)

var importanceTerms = []struct {
	level int
	terms []string
}{
	{ImportanceOlympic, []string{"olympic", "olympics", "world championship"}},
	{ImportanceWorld, []string{
		"world cup", "world series", "world triathlon championship series",
		"wtcs", "wts", "grand final", "championship final",
	}},
	{ImportanceMajor, []string{
		"continental championship", "european championship", "asian championship",
		"american championship", "oceania championship", "african championship",
		"ironman", "70.3", "half ironman", "challenge", "super league",
	}},
	{ImportanceRegional, []string{
		"national championship", "cup", "series", "continental cup",
		"european cup", "asian cup", "american cup", "oceania cup", "african cup",
	}},
}

// ImportanceFromTitle classifies an event title into an importance level.
// Unrecognized titles are local events. The level is informational; it does
// not weight rating updates.
func ImportanceFromTitle(title string) int {
	title = strings.ToLower(title)
	for _, group := range importanceTerms {
		for _, term := range group.terms {
			if strings.Contains(title, term) {
				return group.level
			}
		}
	}
	return ImportanceLocal
}
