package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestLoad_OverridesLayerOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("session_ticks: 50\ninventory_capacity: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tt, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tt.SessionTicks != 50 || tt.InventoryCapacity != 4 {
		t.Fatalf("overrides not applied: %+v", tt)
	}
	if tt.TravelBaseTicks != Default().TravelBaseTicks {
		t.Fatalf("unset field lost its default")
	}
}

func TestLoad_ReferenceFileMatchesDefaults(t *testing.T) {
	tt, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load reference tuning: %v", err)
	}
	def := Default()
	if tt.SessionTicks != def.SessionTicks ||
		tt.GatherBaseChance != def.GatherBaseChance ||
		tt.MaxChance != def.MaxChance ||
		len(tt.CountDistribution) != len(def.CountDistribution) {
		t.Fatalf("configs/tuning.yaml drifted from defaults: %+v", tt)
	}
}

func TestLoad_RejectsBadDistribution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("count_distribution: [10, 20]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for 2-weight distribution")
	}
}
