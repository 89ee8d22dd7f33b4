package entities

import "testing"

func TestClampConfidence(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 7: 7, 10: 10, 15: 10}
	for in, want := range cases {
		if got := ClampConfidence(in); got != want {
			t.Errorf("ClampConfidence(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBuildNarration(t *testing.T) {
	got := BuildNarration(RoastResult{
		OverallVibe: "V",
		RoastLines:  []string{"a", "b"},
		OneLiner:    "L",
	})
	want := "V. a b And here's the best part: L"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestBuildNarration_WithoutOneLiner(t *testing.T) {
	got := BuildNarration(RoastResult{OverallVibe: "V", RoastLines: []string{"a"}})
	if got != "V. a" {
		t.Errorf("Expected %q, got %q", "V. a", got)
	}

	got = BuildNarration(RoastResult{OverallVibe: "V"})
	if got != "V. " {
		t.Errorf("Expected %q, got %q", "V. ", got)
	}
}

func TestRoastResult_Normalize(t *testing.T) {
	r := RoastResult{ConfidenceRating: 42}
	r.Normalize()

	if r.ConfidenceRating != 10 {
		t.Errorf("Expected confidence 10, got %d", r.ConfidenceRating)
	}
	if r.RoastLines == nil || r.StyleTags == nil {
		t.Error("Expected nil slices to be replaced with empty slices")
	}
}
