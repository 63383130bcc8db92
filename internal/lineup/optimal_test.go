package lineup

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthorson/sidepotbot/internal/models"
)

func flexRoster() []models.RosterPlayer {
	return []models.RosterPlayer{
		{Name: "QB1", Points: 20, Slot: "QB", EligibleSlots: []string{"QB", "OP"}},
		{Name: "RB1", Points: 25, Slot: "RB", EligibleSlots: []string{"RB", "RB/WR/TE", "OP"}},
		{Name: "RB2", Points: 20, Slot: "RB", EligibleSlots: []string{"RB", "RB/WR/TE", "OP"}},
		{Name: "RB3", Points: 18, Slot: "BE", EligibleSlots: []string{"RB", "RB/WR/TE", "OP"}},
		{Name: "WR1", Points: 19, Slot: "WR", EligibleSlots: []string{"WR", "RB/WR/TE", "OP"}},
		{Name: "WR2", Points: 18, Slot: "WR", EligibleSlots: []string{"WR", "RB/WR/TE", "OP"}},
		{Name: "WR3", Points: 16, Slot: "BE", EligibleSlots: []string{"WR", "RB/WR/TE", "OP"}},
		{Name: "TE1", Points: 30, Slot: "TE", EligibleSlots: []string{"TE", "RB/WR/TE", "OP"}},
		{Name: "TE2", Points: 5, Slot: "BE", EligibleSlots: []string{"TE", "RB/WR/TE", "OP"}},
	}
}

func flexSlots() []string {
	return ExpandSlots(map[string]int{"QB": 1, "RB": 2, "WR": 2, "TE": 1, "RB/WR/TE": 1})
}

// Greedy assignment by descending points demonstrably underfills here: TE1
// grabs the flex slot first, leaving the TE slot to a 5-point backup, while
// the optimum plays TE1 at TE and a third back in the flex.
func greedyScore(roster []models.RosterPlayer, slots []string) float64 {
	remaining := append([]string(nil), slots...)
	ordered := append([]models.RosterPlayer(nil), roster...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Points > ordered[j].Points })

	total := 0.0
	for _, player := range ordered {
		for i, slot := range remaining {
			if SlotAllows(slot, player.EligibleSlots) {
				total += player.Points
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return total
}

func TestOptimalBeatsGreedyWithOverlappingFlex(t *testing.T) {
	roster := flexRoster()
	slots := flexSlots()

	optimal := OptimalScore(roster, slots)
	greedy := greedyScore(roster, slots)

	assert.Equal(t, 150.0, optimal)
	assert.Equal(t, 137.0, greedy)
	assert.Greater(t, optimal, greedy)
}

func TestOptimalAtLeastActual(t *testing.T) {
	roster := flexRoster()
	slots := flexSlots()

	actual := SumPointsForSlots(roster, StarterSlotLabels(roster))
	optimal := OptimalScore(roster, slots)

	assert.GreaterOrEqual(t, optimal, actual)
}

func TestOptimalInvariantToInputOrder(t *testing.T) {
	roster := flexRoster()
	slots := flexSlots()
	want := OptimalScore(roster, slots)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffledRoster := append([]models.RosterPlayer(nil), roster...)
		rng.Shuffle(len(shuffledRoster), func(a, b int) {
			shuffledRoster[a], shuffledRoster[b] = shuffledRoster[b], shuffledRoster[a]
		})
		shuffledSlots := append([]string(nil), slots...)
		rng.Shuffle(len(shuffledSlots), func(a, b int) {
			shuffledSlots[a], shuffledSlots[b] = shuffledSlots[b], shuffledSlots[a]
		})
		assert.Equal(t, want, OptimalScore(shuffledRoster, shuffledSlots))
	}
}

func TestOptimalDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, OptimalScore(nil, flexSlots()))
	assert.Equal(t, 0.0, OptimalScore(flexRoster(), nil))
	assert.Equal(t, 0.0, OptimalScore(nil, nil))
}

func TestOptimalIgnoresPlayerWithoutEligibility(t *testing.T) {
	roster := []models.RosterPlayer{
		{Name: "RB1", Points: 12, Slot: "RB", EligibleSlots: []string{"RB"}},
		{Name: "Ghost", Points: 99, Slot: "BE", EligibleSlots: nil},
	}

	assert.Equal(t, 12.0, OptimalScore(roster, []string{"RB", "RB/WR/TE"}))
}

func TestOptimalLeavesSlotEmptyWhenNoEligiblePlayer(t *testing.T) {
	roster := []models.RosterPlayer{
		{Name: "QB1", Points: 22, Slot: "QB", EligibleSlots: []string{"QB"}},
	}

	total, picks := OptimalLineup(roster, []string{"QB", "K"})
	assert.Equal(t, 22.0, total)
	require.Len(t, picks, 1)
	assert.Equal(t, "QB", picks[0].Slot)
	assert.Equal(t, "QB1", picks[0].Name)
}

func TestOptimalLineupAssignmentSumsToTotal(t *testing.T) {
	total, picks := OptimalLineup(flexRoster(), flexSlots())

	sum := 0.0
	names := map[string]bool{}
	for _, pick := range picks {
		sum += pick.Points
		assert.False(t, names[pick.Name], "player %s assigned twice", pick.Name)
		names[pick.Name] = true
	}
	assert.Equal(t, total, sum)
	assert.Equal(t, 150.0, total)
}

func TestOptimalPrefersFlexPlacementForTopScorer(t *testing.T) {
	// A single high scorer eligible for both a fixed slot and the flex must
	// not starve the fixed slot when a weaker flex-only option exists.
	roster := []models.RosterPlayer{
		{Name: "Star", Points: 30, Slot: "TE", EligibleSlots: []string{"TE", "RB/WR/TE"}},
		{Name: "Backup", Points: 5, Slot: "BE", EligibleSlots: []string{"TE", "RB/WR/TE"}},
		{Name: "Wideout", Points: 16, Slot: "BE", EligibleSlots: []string{"WR", "RB/WR/TE"}},
	}

	assert.Equal(t, 46.0, OptimalScore(roster, []string{"TE", "RB/WR/TE"}))
}
