package engine

// Tier is the storage/cost class a memory item currently resides in.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Valid reports whether t is one of the three tiers.
func (t Tier) Valid() bool {
	return t == TierHot || t == TierWarm || t == TierCold
}

// Next returns the tier an item advances to, and false if t is terminal.
func (t Tier) Next() (Tier, bool) {
	switch t {
	case TierHot:
		return TierWarm, true
	case TierWarm:
		return TierCold, true
	default:
		return t, false
	}
}

// CanAdvanceTo reports whether t → next is one of the two legal transitions.
// There is no skipping warm and no moving backward.
func (t Tier) CanAdvanceTo(next Tier) bool {
	n, ok := t.Next()
	return ok && n == next
}
