package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadThresholds_PartialFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")
	content := "stress_team_critical: 0.6\nindividual_volatility: 0.35\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	th, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.StressTeamCritical != 0.6 {
		t.Fatalf("expected override 0.6, got %v", th.StressTeamCritical)
	}
	if th.IndividualVolatility != 0.35 {
		t.Fatalf("expected override 0.35, got %v", th.IndividualVolatility)
	}
	// Keys the file does not name keep their defaults.
	if th.StressTeamPercentage != 0.3 {
		t.Fatalf("expected default 0.3, got %v", th.StressTeamPercentage)
	}
	if th.IndividualStressCritical != 0.8 {
		t.Fatalf("expected default 0.8, got %v", th.IndividualStressCritical)
	}
}

func TestLoadThresholds_MissingFileReturnsDefaults(t *testing.T) {
	th, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if th != DefaultThresholds() {
		t.Fatalf("expected defaults on failure, got %+v", th)
	}
}

func TestLoadThresholds_BadYAMLReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	th, err := LoadThresholds(path)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if th != DefaultThresholds() {
		t.Fatalf("expected defaults on parse failure, got %+v", th)
	}
}
