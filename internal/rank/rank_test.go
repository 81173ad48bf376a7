package rank

import "testing"

func TestValueOrdering(t *testing.T) {
	// Successive rungs of the ladder, weakest first. Every step must be a
	// strict increase in Value.
	ladder := []Rank{
		{TierBronze, 5},
		{TierBronze, 1},
		{TierSilver, 5},
		{TierGold, 3},
		{TierGold, 1},
		{TierPlatinum, 5},
		{TierDiamond, 2},
		{TierMaster, 5},
		{TierGrandmaster, 1},
		{TierChampion, 1},
	}
	for i := 1; i < len(ladder); i++ {
		lo, hi := ladder[i-1], ladder[i]
		if lo.Value() >= hi.Value() {
			t.Errorf("%s (%d) should be weaker than %s (%d)", lo, lo.Value(), hi, hi.Value())
		}
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		rank Rank
		want bool
	}{
		{"gold 3", Rank{TierGold, 3}, true},
		{"division too high", Rank{TierGold, 6}, false},
		{"division zero", Rank{TierGold, 0}, false},
		{"unknown tier", Rank{Tier("wood"), 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rank.Valid(); got != tc.want {
				t.Errorf("Valid(%v) = %v, want %v", tc.rank, got, tc.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	a := Rank{TierGold, 1}
	b := Rank{TierPlatinum, 5}
	if Compare(a, b) >= 0 {
		t.Errorf("gold 1 should be weaker than platinum 5")
	}
	if Compare(a, a) != 0 {
		t.Errorf("Compare(a, a) != 0")
	}
}

func TestBest(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Fatal("Best(nil) should report no rank")
	}

	best, ok := Best([]Rank{
		{TierGold, 2},
		{TierDiamond, 4},
		{TierSilver, 1},
	})
	if !ok {
		t.Fatal("Best should find a rank")
	}
	if best != (Rank{TierDiamond, 4}) {
		t.Errorf("Best = %v, want diamond 4", best)
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("grandmaster")
	if err != nil || tier != TierGrandmaster {
		t.Fatalf("ParseTier(grandmaster) = %v, %v", tier, err)
	}
	if _, err := ParseTier("wood"); err == nil {
		t.Fatal("ParseTier(wood) should fail")
	}
}

func TestTiersOrdered(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != len(tierOrder) {
		t.Fatalf("Tiers() returned %d tiers, want %d", len(tiers), len(tierOrder))
	}
	for i, tier := range tiers {
		if tierOrder[tier] != i {
			t.Errorf("Tiers()[%d] = %s, out of ladder order", i, tier)
		}
	}
}
