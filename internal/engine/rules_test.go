package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

func findCandidate(candidates []SuggestionCandidate, t types.SuggestionType) *SuggestionCandidate {
	for i := range candidates {
		if candidates[i].Type == t {
			return &candidates[i]
		}
	}
	return nil
}

func TestEvaluate_EmptyAnalysisYieldsNothing(t *testing.T) {
	re := NewRuleEngine(DefaultThresholds())
	team, personal := re.Evaluate(Aggregate(nil, DefaultThresholds()))
	if team != nil || personal != nil {
		t.Fatalf("expected no candidates for empty analysis")
	}
}

func TestEvaluate_CriticalStressTriggersBreakAndPersonalBreak(t *testing.T) {
	stressed, calm := uuid.New(), uuid.New()
	now := time.Now()

	var observations []types.EmotionObservation
	for i := 0; i < 6; i++ {
		observations = append(observations, obs(stressed, types.EmotionStressed, 0.85, now.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 4; i++ {
		observations = append(observations, obs(calm, types.EmotionHappy, 0.6, now.Add(time.Duration(6+i)*time.Minute)))
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, personal := re.Evaluate(Aggregate(observations, th))

	breakCandidate := findCandidate(team, types.SuggestionBreak)
	if breakCandidate == nil {
		t.Fatalf("expected a break suggestion, got %+v", team)
	}
	if breakCandidate.Priority != 3 {
		t.Fatalf("expected break priority 3, got %d", breakCandidate.Priority)
	}
	if findCandidate(team, types.SuggestionBreathing) != nil {
		t.Fatalf("break and breathing are mutually exclusive")
	}

	personalBreak := findCandidate(personal, types.SuggestionPersonalBreak)
	if personalBreak == nil {
		t.Fatalf("expected a personal break for the stressed user, got %+v", personal)
	}
	if personalBreak.Priority != 3 {
		t.Fatalf("expected personal break priority 3, got %d", personalBreak.Priority)
	}
	if personalBreak.UserID == nil || *personalBreak.UserID != stressed {
		t.Fatalf("personal break targets the wrong user")
	}
	if !personalBreak.IsPersonal {
		t.Fatalf("personal break must be flagged personal")
	}
}

func TestEvaluateTeam_ModerateStressTriggersBreathing(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	// 2 of 5 observations stressed: fraction 0.4, between 0.3 and 0.5.
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionStressed, 0.5, now),
		obs(userA, types.EmotionStressed, 0.5, now.Add(time.Minute)),
		obs(userB, types.EmotionHappy, 0.6, now.Add(2*time.Minute)),
		obs(userB, types.EmotionHappy, 0.6, now.Add(3*time.Minute)),
		obs(userB, types.EmotionHappy, 0.6, now.Add(4*time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, _ := re.Evaluate(Aggregate(observations, th))

	breathing := findCandidate(team, types.SuggestionBreathing)
	if breathing == nil {
		t.Fatalf("expected a breathing suggestion, got %+v", team)
	}
	if breathing.Priority != 2 {
		t.Fatalf("expected breathing priority 2, got %d", breathing.Priority)
	}
	if findCandidate(team, types.SuggestionBreak) != nil {
		t.Fatalf("break must not fire below the critical fraction")
	}
}

func TestEvaluateTeam_CheckInOnHighStressUsers(t *testing.T) {
	stressed, other := uuid.New(), uuid.New()
	now := time.Now()
	// One user averages 0.9 stress intensity but the team stress
	// fraction stays at 0.25, below the breathing band.
	observations := []types.EmotionObservation{
		obs(stressed, types.EmotionStressed, 0.9, now),
		obs(other, types.EmotionHappy, 0.6, now.Add(time.Minute)),
		obs(other, types.EmotionHappy, 0.6, now.Add(2*time.Minute)),
		obs(other, types.EmotionHappy, 0.6, now.Add(3*time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, _ := re.Evaluate(Aggregate(observations, th))

	checkIn := findCandidate(team, types.SuggestionCheckIn)
	if checkIn == nil {
		t.Fatalf("expected a check_in suggestion, got %+v", team)
	}
	if len(checkIn.AffectedUsers) != 1 || checkIn.AffectedUsers[0] != stressed {
		t.Fatalf("check_in should list the high-stress user, got %v", checkIn.AffectedUsers)
	}
}

func TestEvaluateTeam_LowEnergyTriggersEnergizer(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionNeutral, 0.5, now),
		obs(userA, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
		obs(userB, types.EmotionNeutral, 0.5, now.Add(2*time.Minute)),
		obs(userB, types.EmotionHappy, 0.6, now.Add(3*time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, _ := re.Evaluate(Aggregate(observations, th))

	energizer := findCandidate(team, types.SuggestionEnergizer)
	if energizer == nil {
		t.Fatalf("expected an energizer suggestion, got %+v", team)
	}
	if len(energizer.AffectedUsers) != 2 {
		t.Fatalf("energizer should affect everyone, got %v", energizer.AffectedUsers)
	}
}

func TestEvaluateTeam_NegativeEmotionsTriggerDiscussion(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionSad, 0.6, now),
		obs(userA, types.EmotionAngry, 0.6, now.Add(time.Minute)),
		obs(userB, types.EmotionSad, 0.6, now.Add(2*time.Minute)),
		obs(userB, types.EmotionHappy, 0.6, now.Add(3*time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, _ := re.Evaluate(Aggregate(observations, th))

	discussion := findCandidate(team, types.SuggestionDiscussion)
	if discussion == nil {
		t.Fatalf("expected a discussion suggestion, got %+v", team)
	}
	if discussion.Priority != 3 {
		t.Fatalf("expected discussion priority 3, got %d", discussion.Priority)
	}
}

func TestEvaluateTeam_VolatilityTriggersRestructure(t *testing.T) {
	userA := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionHappy, 0.05, now),
		obs(userA, types.EmotionHappy, 0.95, now.Add(time.Minute)),
		obs(userA, types.EmotionHappy, 0.05, now.Add(2*time.Minute)),
		obs(userA, types.EmotionHappy, 0.95, now.Add(3*time.Minute)),
	}

	th := DefaultThresholds()
	analysis := Aggregate(observations, th)
	if analysis.EmotionalVolatility <= th.EmotionalVolatility {
		t.Fatalf("test setup: volatility %v not above threshold", analysis.EmotionalVolatility)
	}

	team, _ := NewRuleEngine(th).Evaluate(analysis)
	if findCandidate(team, types.SuggestionRestructure) == nil {
		t.Fatalf("expected a restructure suggestion, got %+v", team)
	}
}

func TestEvaluatePersonal_PrecedenceFirstMatchWins(t *testing.T) {
	userA := uuid.New()
	now := time.Now()
	// Stress level 0.7 (high but not critical) and a fully negative
	// batch: the stress rule must win over the negative-emotion rule.
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionStressed, 0.95, now),
		obs(userA, types.EmotionStressed, 0.45, now.Add(time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	_, personal := re.Evaluate(Aggregate(observations, th))

	if len(personal) != 1 {
		t.Fatalf("expected exactly one personal suggestion, got %d", len(personal))
	}
	if personal[0].Type != types.SuggestionStressManagement {
		t.Fatalf("expected stress_management to win precedence, got %s", personal[0].Type)
	}
	if personal[0].Priority != 2 {
		t.Fatalf("expected priority 2 below the critical stress level, got %d", personal[0].Priority)
	}
}

func TestEvaluatePersonal_LowEnergyGetsEngagementBoost(t *testing.T) {
	userA := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionNeutral, 0.5, now),
		obs(userA, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
		obs(userA, types.EmotionNeutral, 0.5, now.Add(2*time.Minute)),
		obs(userA, types.EmotionHappy, 0.5, now.Add(3*time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	_, personal := re.Evaluate(Aggregate(observations, th))

	if len(personal) != 1 || personal[0].Type != types.SuggestionEngagementBoost {
		t.Fatalf("expected a single engagement_boost, got %+v", personal)
	}
}

func TestEvaluate_TriggerContextSnapshotsAnalysis(t *testing.T) {
	userA := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionStressed, 0.9, now),
		obs(userA, types.EmotionStressed, 0.9, now.Add(time.Minute)),
	}

	th := DefaultThresholds()
	re := NewRuleEngine(th)
	team, _ := re.Evaluate(Aggregate(observations, th))

	breakCandidate := findCandidate(team, types.SuggestionBreak)
	if breakCandidate == nil {
		t.Fatalf("expected a break suggestion")
	}
	if breakCandidate.TriggerContext["total_observations"] != 2 {
		t.Fatalf("expected trigger context to record the batch size, got %v", breakCandidate.TriggerContext)
	}
	if breakCandidate.TriggerContext["stress_count"] != 2 {
		t.Fatalf("expected trigger context to record the stress count, got %v", breakCandidate.TriggerContext)
	}
}
