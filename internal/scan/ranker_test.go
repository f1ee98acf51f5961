package scan

import (
	"testing"

	"PatternScout/internal/model"
)

func sig(code string, score int, proximity float64) *model.Signal {
	return &model.Signal{Code: code, Score: score, ProximityPct: proximity}
}

func TestRank_ScoreDescending(t *testing.T) {
	ranked := Rank([]*model.Signal{
		sig("600001", 60, 0.5),
		sig("600002", 100, 0.5),
		sig("600003", 80, 0.5),
	})
	want := []string{"600002", "600003", "600001"}
	for i, w := range want {
		if ranked[i].Code != w {
			t.Errorf("rank %d: expected %s, got %s", i, w, ranked[i].Code)
		}
	}
}

func TestRank_ProximityTieBreak(t *testing.T) {
	// identical gate outcomes, 0.3% vs 0.9% from support: tighter first
	ranked := Rank([]*model.Signal{
		sig("600009", 60, 0.9),
		sig("600003", 60, -0.3),
	})
	if ranked[0].Code != "600003" || ranked[1].Code != "600009" {
		t.Errorf("expected tighter proximity ranked first, got %s then %s",
			ranked[0].Code, ranked[1].Code)
	}
}

func TestRank_TotalOrderUnderPermutation(t *testing.T) {
	signals := []*model.Signal{
		sig("600005", 80, 0.2),
		sig("600001", 60, 0.1),
		sig("600004", 80, 0.2), // full tie with 600005 except code
		sig("600002", 100, 1.2),
		sig("600003", 60, -0.1), // |proximity| ties with 600001
	}
	forward := Rank(signals)

	reversed := make([]*model.Signal, len(signals))
	for i, s := range signals {
		reversed[len(signals)-1-i] = s
	}
	backward := Rank(reversed)

	for i := range forward {
		if forward[i].Code != backward[i].Code {
			t.Errorf("rank %d differs under permutation: %s vs %s",
				i, forward[i].Code, backward[i].Code)
		}
	}
	want := []string{"600002", "600004", "600005", "600001", "600003"}
	for i, w := range want {
		if forward[i].Code != w {
			t.Errorf("rank %d: expected %s, got %s", i, w, forward[i].Code)
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	signals := []*model.Signal{sig("600002", 60, 0), sig("600001", 100, 0)}
	Rank(signals)
	if signals[0].Code != "600002" {
		t.Error("Rank must not reorder the input slice")
	}
}

func TestTruncate(t *testing.T) {
	signals := []*model.Signal{sig("a", 3, 0), sig("b", 2, 0), sig("c", 1, 0)}
	if got := Truncate(signals, 2); len(got) != 2 || got[1].Code != "b" {
		t.Errorf("expected top 2 [a b], got %v", got)
	}
	if got := Truncate(signals, 0); len(got) != 3 {
		t.Error("n <= 0 must keep everything")
	}
	if got := Truncate(signals, 5); len(got) != 3 {
		t.Error("n beyond length must keep everything")
	}
}
