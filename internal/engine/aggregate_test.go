package engine

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

func obs(userID uuid.UUID, emotion types.EmotionType, intensity float64, ts time.Time) types.EmotionObservation {
	return types.EmotionObservation{
		ID:          uuid.New(),
		UserID:      userID,
		EmotionType: emotion,
		Intensity:   intensity,
		Confidence:  0.9,
		Source:      types.SourceManual,
		Timestamp:   ts,
	}
}

func TestAggregate_EmptyBatch(t *testing.T) {
	analysis := Aggregate(nil, DefaultThresholds())
	if analysis.TotalCount != 0 || analysis.UniqueUsers != 0 {
		t.Fatalf("expected zeroed analysis, got %+v", analysis)
	}
	if analysis.CountsByEmotion == nil || analysis.Users == nil || analysis.HighStressUsers == nil {
		t.Fatalf("expected non-nil maps and slices on empty batch")
	}
	if analysis.EmotionalVolatility != 0 || analysis.AverageIntensity != 0 {
		t.Fatalf("expected zero statistics on empty batch")
	}
}

func TestAggregate_VolatilityIsSampleStdev(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionNeutral, 0.9, now),
		obs(userID, types.EmotionNeutral, 0.8, now.Add(time.Minute)),
		obs(userID, types.EmotionNeutral, 0.6, now.Add(2*time.Minute)),
	}

	analysis := Aggregate(observations, DefaultThresholds())
	want := 0.15275252316519466
	if math.Abs(analysis.EmotionalVolatility-want) > 1e-9 {
		t.Fatalf("expected volatility %v, got %v", want, analysis.EmotionalVolatility)
	}
}

func TestSampleStdev_FewerThanTwoSamples(t *testing.T) {
	if v := sampleStdev(nil); v != 0 {
		t.Fatalf("expected 0 for empty input, got %v", v)
	}
	if v := sampleStdev([]float64{0.7}); v != 0 {
		t.Fatalf("expected 0 for a single sample, got %v", v)
	}
}

func TestAggregate_TeamCountsAndFractions(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userA, types.EmotionStressed, 0.7, now),
		obs(userA, types.EmotionSad, 0.6, now.Add(time.Minute)),
		obs(userB, types.EmotionNeutral, 0.5, now.Add(2*time.Minute)),
		obs(userB, types.EmotionHappy, 0.8, now.Add(3*time.Minute)),
	}

	analysis := Aggregate(observations, DefaultThresholds())
	if analysis.TotalCount != 4 || analysis.UniqueUsers != 2 {
		t.Fatalf("unexpected totals: %+v", analysis)
	}
	if analysis.StressCount != 1 || analysis.NegativeCount != 2 || analysis.NeutralCount != 1 {
		t.Fatalf("unexpected counts: stress=%d negative=%d neutral=%d",
			analysis.StressCount, analysis.NegativeCount, analysis.NeutralCount)
	}
	if analysis.NegativePercentage != 0.5 {
		t.Fatalf("expected negative fraction 0.5, got %v", analysis.NegativePercentage)
	}
	if analysis.LowEnergyPercentage != 0.25 {
		t.Fatalf("expected neutral fraction 0.25, got %v", analysis.LowEnergyPercentage)
	}
}

func TestAggregate_HighStressUsersAndNeedsAttention(t *testing.T) {
	stressed, calm := uuid.New(), uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(stressed, types.EmotionStressed, 0.9, now),
		obs(stressed, types.EmotionStressed, 0.8, now.Add(time.Minute)),
		obs(calm, types.EmotionHappy, 0.6, now.Add(2*time.Minute)),
	}

	analysis := Aggregate(observations, DefaultThresholds())
	if len(analysis.HighStressUsers) != 1 {
		t.Fatalf("expected 1 high-stress user, got %d", len(analysis.HighStressUsers))
	}
	if analysis.HighStressUsers[0].UserID != stressed {
		t.Fatalf("wrong high-stress user")
	}
	if !analysis.Users[stressed].NeedsAttention {
		t.Fatalf("stressed user should need attention")
	}
	if analysis.Users[calm].NeedsAttention {
		t.Fatalf("calm user should not need attention")
	}
}

func TestDominantEmotion_TieBreaksTowardFirstSeen(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionSad, 0.5, now),
		obs(userID, types.EmotionHappy, 0.5, now.Add(time.Minute)),
		obs(userID, types.EmotionHappy, 0.5, now.Add(2*time.Minute)),
		obs(userID, types.EmotionSad, 0.5, now.Add(3*time.Minute)),
	}
	if got := DominantEmotion(observations); got != types.EmotionSad {
		t.Fatalf("expected tie to break toward first-seen sad, got %s", got)
	}
}

func TestAggregate_UserOrderIsDeterministic(t *testing.T) {
	userA, userB, userC := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userB, types.EmotionNeutral, 0.5, now),
		obs(userA, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
		obs(userC, types.EmotionNeutral, 0.5, now.Add(2*time.Minute)),
		obs(userA, types.EmotionNeutral, 0.5, now.Add(3*time.Minute)),
	}

	first := Aggregate(observations, DefaultThresholds())
	second := Aggregate(observations, DefaultThresholds())
	want := []uuid.UUID{userB, userA, userC}
	if !reflect.DeepEqual(first.UserOrder, want) {
		t.Fatalf("unexpected user order: %v", first.UserOrder)
	}
	if !reflect.DeepEqual(first.UserOrder, second.UserOrder) {
		t.Fatalf("user order differs between identical runs")
	}
}

func TestDistribution_PercentagesAndMeans(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionHappy, 0.8, now),
		obs(userID, types.EmotionHappy, 0.6, now.Add(time.Minute)),
		obs(userID, types.EmotionSad, 0.4, now.Add(2*time.Minute)),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(3*time.Minute)),
	}

	dist := Distribution(observations)
	happy := dist[types.EmotionHappy]
	if happy.Count != 2 || happy.Percentage != 50 {
		t.Fatalf("unexpected happy breakdown: %+v", happy)
	}
	if math.Abs(happy.AverageIntensity-0.7) > 1e-9 {
		t.Fatalf("expected happy mean 0.7, got %v", happy.AverageIntensity)
	}
	if dist[types.EmotionSad].Percentage != 25 {
		t.Fatalf("expected sad 25%%, got %v", dist[types.EmotionSad].Percentage)
	}
	if len(Distribution(nil)) != 0 {
		t.Fatalf("expected empty distribution for empty batch")
	}
}

func TestSortChronological_CopiesAndOrders(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	observations := []types.EmotionObservation{
		obs(userID, types.EmotionHappy, 0.5, now.Add(2*time.Minute)),
		obs(userID, types.EmotionSad, 0.5, now),
		obs(userID, types.EmotionNeutral, 0.5, now.Add(time.Minute)),
	}

	sorted := SortChronological(observations)
	if !sorted[0].Timestamp.Before(sorted[1].Timestamp) || !sorted[1].Timestamp.Before(sorted[2].Timestamp) {
		t.Fatalf("result not in chronological order")
	}
	if observations[0].EmotionType != types.EmotionHappy {
		t.Fatalf("input slice was mutated")
	}
}
