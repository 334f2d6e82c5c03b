package tuning_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"starlanes/internal/sim/tuning"
)

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find repo root from %s", dir)
		}
		dir = parent
	}
}

func TestDefaults_Valid(t *testing.T) {
	if err := tuning.Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_ShippedFileMatchesDefaults(t *testing.T) {
	got, err := tuning.Load(filepath.Join(findRepoRoot(t), "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := tuning.Defaults(); !reflect.DeepEqual(got, want) {
		t.Fatalf("shipped tuning.yaml drifted from defaults:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("resale_penalty: 0.9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := tuning.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ResalePenalty != 0.9 {
		t.Fatalf("resale penalty %v, want 0.9", got.ResalePenalty)
	}
	// Untouched fields keep their defaults.
	if got.UniverseTotal != 35.0 {
		t.Fatalf("universe total %v, want 35", got.UniverseTotal)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := tuning.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*tuning.Tuning)
	}{
		{"zero universe total", func(tn *tuning.Tuning) { tn.UniverseTotal = 0 }},
		{"inverted fluctuation range", func(tn *tuning.Tuning) { tn.FluctuationMin = 3; tn.FluctuationMax = 2 }},
		{"probability above one", func(tn *tuning.Tuning) { tn.EventProbability = 1.5 }},
		{"zero resale penalty", func(tn *tuning.Tuning) { tn.ResalePenalty = 0 }},
		{"wrong bin count", func(tn *tuning.Tuning) { tn.PriceBins = []float64{0.5, 1.5} }},
		{"unsorted bins", func(tn *tuning.Tuning) { tn.PriceBins = []float64{0.6, 0.8, 0.8, 1.05, 1.2, 1.4} }},
	}
	for _, tc := range cases {
		tn := tuning.Defaults()
		tc.mutate(&tn)
		if err := tn.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
