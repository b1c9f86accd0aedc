package observ

import (
	"strings"
	"testing"
)

func TestTimerStages(t *testing.T) {
	tm := NewTimer()
	cfg := tm.Start("config")
	running := tm.Start("lint")
	first := cfg.Stop("biome.json")
	if again := cfg.Stop("other"); again != first {
		t.Fatalf("second Stop changed the duration: %v vs %v", again, first)
	}

	stages := tm.Stages()
	if len(stages) != 1 || stages[0].Name != "config" || stages[0].Note != "biome.json" {
		t.Fatalf("stages = %+v", stages)
	}
	running.Stop("3 files")
	s := tm.Summary()
	for _, want := range []string{"timings:", "config", "biome.json", "3 files", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}

	tm.Reset()
	if len(tm.Stages()) != 0 {
		t.Fatal("Reset kept stages")
	}
	if (Stage{}).Stop("") != 0 {
		t.Fatal("zero stage reported time")
	}
}
