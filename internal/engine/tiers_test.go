package engine

import "testing"

func TestTierNext(t *testing.T) {
	if next, ok := TierHot.Next(); !ok || next != TierWarm {
		t.Errorf("TierHot.Next() = %v, %v; want warm, true", next, ok)
	}
	if next, ok := TierWarm.Next(); !ok || next != TierCold {
		t.Errorf("TierWarm.Next() = %v, %v; want cold, true", next, ok)
	}
	if _, ok := TierCold.Next(); ok {
		t.Error("TierCold.Next() ok = true, want false (terminal)")
	}
}

func TestTierCanAdvanceTo(t *testing.T) {
	legal := map[[2]Tier]bool{
		{TierHot, TierWarm}:  true,
		{TierWarm, TierCold}: true,
	}

	tiers := []Tier{TierHot, TierWarm, TierCold}
	for _, from := range tiers {
		for _, to := range tiers {
			want := legal[[2]Tier{from, to}]
			if got := from.CanAdvanceTo(to); got != want {
				t.Errorf("%s.CanAdvanceTo(%s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTierValid(t *testing.T) {
	for _, tier := range []Tier{TierHot, TierWarm, TierCold} {
		if !tier.Valid() {
			t.Errorf("%s.Valid() = false", tier)
		}
	}
	if Tier("lukewarm").Valid() {
		t.Error(`Tier("lukewarm").Valid() = true`)
	}
}
