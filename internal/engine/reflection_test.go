package engine

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

func TestReflect_NoDataMessages(t *testing.T) {
	userID := uuid.New()

	r := Reflect(userID, nil, nil)
	if r.HasData {
		t.Fatalf("expected no data")
	}
	if r.Message != "Not enough emotion data was collected to generate a reflection." {
		t.Fatalf("unexpected message: %q", r.Message)
	}

	other := uuid.New()
	now := time.Now()
	r = Reflect(userID, nil, []types.EmotionObservation{
		obs(other, types.EmotionHappy, 0.5, now),
	})
	if r.HasData {
		t.Fatalf("expected no data when batch holds only other users")
	}
	if r.Message != "No emotion data was collected for this user." {
		t.Fatalf("unexpected message: %q", r.Message)
	}
}

func TestReflect_SummaryAndStability(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionHappy, 0.9, now),
		obs(userID, types.EmotionHappy, 0.8, now.Add(time.Minute)),
		obs(userID, types.EmotionHappy, 0.6, now.Add(2*time.Minute)),
	}

	r := Reflect(userID, nil, observations)
	if !r.HasData || r.EmotionSummary == nil {
		t.Fatalf("expected a full reflection")
	}
	if r.EmotionSummary.TotalTracked != 3 {
		t.Fatalf("expected 3 tracked, got %d", r.EmotionSummary.TotalTracked)
	}
	if r.EmotionSummary.DominantEmotion != types.EmotionHappy {
		t.Fatalf("expected happy dominant, got %s", r.EmotionSummary.DominantEmotion)
	}
	// stability = 1 - stdev([0.9, 0.8, 0.6]) ~= 0.847, rounded to 0.85
	if math.Abs(r.EmotionSummary.EmotionalStability-0.85) > 1e-9 {
		t.Fatalf("expected stability 0.85, got %v", r.EmotionSummary.EmotionalStability)
	}
	if r.EmotionSummary.EmotionDistribution[types.EmotionHappy] != 100 {
		t.Fatalf("expected 100%% happy, got %v", r.EmotionSummary.EmotionDistribution)
	}

	foundStable := false
	for _, insight := range r.Insights {
		if strings.Contains(insight, "remained quite stable") {
			foundStable = true
		}
	}
	if !foundStable {
		t.Fatalf("expected a stability insight, got %v", r.Insights)
	}
}

func TestReflect_JourneyIsChronological(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionSad, 0.5, now.Add(2*time.Minute)),
		obs(userID, types.EmotionHappy, 0.5, now),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
	}

	r := Reflect(userID, nil, observations)
	if len(r.EmotionJourney) != 3 {
		t.Fatalf("expected 3 journey points, got %d", len(r.EmotionJourney))
	}
	if r.EmotionJourney[0].Emotion != types.EmotionHappy || r.EmotionJourney[2].Emotion != types.EmotionSad {
		t.Fatalf("journey not chronological: %+v", r.EmotionJourney)
	}
}

func TestReflect_ImprovingTrendInsight(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	// First third negative, last third positive.
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionStressed, 0.6, now),
		obs(userID, types.EmotionSad, 0.6, now.Add(time.Minute)),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(2*time.Minute)),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(3*time.Minute)),
		obs(userID, types.EmotionHappy, 0.6, now.Add(4*time.Minute)),
		obs(userID, types.EmotionHappy, 0.7, now.Add(5*time.Minute)),
	}

	r := Reflect(userID, nil, observations)
	found := false
	for _, insight := range r.Insights {
		if strings.Contains(insight, "appeared to improve") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an improving-trend insight, got %v", r.Insights)
	}
}

func TestReflect_ActionItemsCappedAtThree(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	// Stressed dominant with unstable intensities generates more than
	// three raw items.
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionStressed, 0.05, now),
		obs(userID, types.EmotionStressed, 0.95, now.Add(time.Minute)),
		obs(userID, types.EmotionStressed, 0.05, now.Add(2*time.Minute)),
		obs(userID, types.EmotionStressed, 0.95, now.Add(3*time.Minute)),
	}

	r := Reflect(userID, nil, observations)
	if len(r.ActionItems) != 3 {
		t.Fatalf("expected exactly 3 action items, got %d: %v", len(r.ActionItems), r.ActionItems)
	}
	if !strings.Contains(r.ActionItems[0], "stressors") {
		t.Fatalf("expected the stress items first, got %v", r.ActionItems)
	}
}

func TestReflect_EngagementRemarks(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	var many []types.EmotionObservation
	for i := 0; i < 6; i++ {
		many = append(many, obs(userID, types.EmotionNeutral, 0.5, now.Add(time.Duration(i)*time.Minute)))
	}
	r := Reflect(userID, nil, many)
	found := false
	for _, insight := range r.Insights {
		if strings.Contains(insight, "active engagement") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an engagement insight for 6 entries, got %v", r.Insights)
	}

	few := []types.EmotionObservation{
		obs(userID, types.EmotionNeutral, 0.5, now),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
	}
	r = Reflect(userID, nil, few)
	found = false
	for _, insight := range r.Insights {
		if strings.Contains(insight, "Limited emotional data") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a limited-data insight for 2 entries, got %v", r.Insights)
	}
}
