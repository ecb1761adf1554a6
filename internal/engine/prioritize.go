package engine

import (
	"sort"

	"github.com/scrummood/scrummood-backend/internal/types"
)

// maxTeamSuggestions caps the team-level output per evaluation.
const maxTeamSuggestions = 2

// Finalize collapses duplicate team candidates by type (first
// occurrence in generation order wins), sorts the survivors by
// priority descending with a stable sort, and truncates to the top
// two. Personal candidates pass through untouched: every flagged user
// keeps exactly one suggestion.
func Finalize(teamCandidates, personalCandidates []SuggestionCandidate) (team []SuggestionCandidate, personal []SuggestionCandidate) {
	seen := make(map[types.SuggestionType]bool)
	team = make([]SuggestionCandidate, 0, len(teamCandidates))
	for _, c := range teamCandidates {
		if seen[c.Type] {
			continue
		}
		seen[c.Type] = true
		team = append(team, c)
	}

	sort.SliceStable(team, func(i, j int) bool {
		return team[i].Priority > team[j].Priority
	})

	if len(team) > maxTeamSuggestions {
		team = team[:maxTeamSuggestions]
	}

	return team, personalCandidates
}
