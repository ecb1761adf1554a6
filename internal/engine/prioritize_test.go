package engine

import (
	"testing"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

func candidate(t types.SuggestionType, priority int, personal bool) SuggestionCandidate {
	c := SuggestionCandidate{Type: t, Priority: priority, IsPersonal: personal}
	if personal {
		uid := uuid.New()
		c.UserID = &uid
	}
	return c
}

func TestFinalize_DedupesByTypeKeepingFirst(t *testing.T) {
	first := candidate(types.SuggestionBreak, 3, false)
	first.Title = "first"
	duplicate := candidate(types.SuggestionBreak, 2, false)
	duplicate.Title = "second"

	team, _ := Finalize([]SuggestionCandidate{first, duplicate}, nil)
	if len(team) != 1 {
		t.Fatalf("expected 1 after dedupe, got %d", len(team))
	}
	if team[0].Title != "first" {
		t.Fatalf("expected first occurrence to survive, got %q", team[0].Title)
	}
}

func TestFinalize_SortsByPriorityAndCapsAtTwo(t *testing.T) {
	team, _ := Finalize([]SuggestionCandidate{
		candidate(types.SuggestionCheckIn, 2, false),
		candidate(types.SuggestionBreak, 3, false),
		candidate(types.SuggestionEnergizer, 2, false),
	}, nil)

	if len(team) != 2 {
		t.Fatalf("expected team output capped at 2, got %d", len(team))
	}
	if team[0].Type != types.SuggestionBreak {
		t.Fatalf("expected highest priority first, got %s", team[0].Type)
	}
	// Stable sort: check_in came before energizer at equal priority.
	if team[1].Type != types.SuggestionCheckIn {
		t.Fatalf("expected stable ordering at equal priority, got %s", team[1].Type)
	}
}

func TestFinalize_PersonalPassesThroughUncapped(t *testing.T) {
	personal := []SuggestionCandidate{
		candidate(types.SuggestionPersonalBreak, 3, true),
		candidate(types.SuggestionStressManagement, 2, true),
		candidate(types.SuggestionEngagementBoost, 2, true),
	}

	_, got := Finalize(nil, personal)
	if len(got) != len(personal) {
		t.Fatalf("personal suggestions must pass through untouched, got %d", len(got))
	}
	for i := range personal {
		if got[i].Type != personal[i].Type {
			t.Fatalf("personal order changed at %d", i)
		}
	}
}
