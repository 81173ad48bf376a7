package rank

import "fmt"

// Tier is a competitive rank tier, ordered lowest to highest.
type Tier string

const (
	TierBronze      Tier = "bronze"
	TierSilver      Tier = "silver"
	TierGold        Tier = "gold"
	TierPlatinum    Tier = "platinum"
	TierDiamond     Tier = "diamond"
	TierMaster      Tier = "master"
	TierGrandmaster Tier = "grandmaster"
	TierChampion    Tier = "champion"
)

// tierOrder maps each tier to its position in the ladder.
var tierOrder = map[Tier]int{
	TierBronze:      0,
	TierSilver:      1,
	TierGold:        2,
	TierPlatinum:    3,
	TierDiamond:     4,
	TierMaster:      5,
	TierGrandmaster: 6,
	TierChampion:    7,
}

// Divisions run 5 (weakest) to 1 (strongest) within a tier.
const (
	MinDivision = 1
	MaxDivision = 5
)

// tierSpan is the scalar width reserved per tier. It must exceed the
// division range so tiers never overlap.
const tierSpan = 10

// Rank is a tier and division pair for a single role.
type Rank struct {
	Tier     Tier
	Division int
}

// Valid reports whether the tier is known and the division is in range.
func (r Rank) Valid() bool {
	_, ok := tierOrder[r.Tier]
	return ok && r.Division >= MinDivision && r.Division <= MaxDivision
}

// Value collapses the rank into a single comparable scalar. Higher is
// stronger. Division 1 is the strongest within a tier, so it contributes
// the most.
func (r Rank) Value() int {
	order, ok := tierOrder[r.Tier]
	if !ok {
		return 0
	}
	return order*tierSpan + (MaxDivision + 1 - r.Division)
}

func (r Rank) String() string {
	return fmt.Sprintf("%s %d", r.Tier, r.Division)
}

// Compare orders two ranks by Value; it returns a negative number when a
// is weaker than b, zero when equal, positive when stronger.
func Compare(a, b Rank) int {
	return a.Value() - b.Value()
}

// Best returns the strongest of the given ranks and true, or false when
// the slice is empty. Used to pick which of a player's role ranks to
// surface when no single role applies.
func Best(ranks []Rank) (Rank, bool) {
	if len(ranks) == 0 {
		return Rank{}, false
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if Compare(r, best) > 0 {
			best = r
		}
	}
	return best, true
}

// ParseTier validates a tier name supplied by a command option.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierOrder[t]; !ok {
		return "", fmt.Errorf("unknown rank tier %q", s)
	}
	return t, nil
}

// Tiers returns every tier, lowest first. Used to build command choices.
func Tiers() []Tier {
	return []Tier{
		TierBronze, TierSilver, TierGold, TierPlatinum,
		TierDiamond, TierMaster, TierGrandmaster, TierChampion,
	}
}
