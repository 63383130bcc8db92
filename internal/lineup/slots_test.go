package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kthorson/sidepotbot/internal/models"
)

func TestCanonicalLabel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "plain position", raw: "qb", expected: "QB"},
		{name: "whitespace stripped", raw: " rb/wr/te ", expected: "RB/WR/TE"},
		{name: "dst slash alias", raw: "D/ST", expected: "DST"},
		{name: "def alias", raw: "DEF", expected: "DST"},
		{name: "bare d alias", raw: "d", expected: "DST"},
		{name: "embedded def", raw: "TEAMDEF", expected: "DST"},
		{name: "unknown passes through", raw: "op", expected: "OP"},
		{name: "empty", raw: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalLabel(tt.raw))
		})
	}
}

func TestCanonicalLabelIdempotent(t *testing.T) {
	for _, raw := range []string{"d/st", "DEF", "rb / wr", "FLEX", "qb", "ir"} {
		once := CanonicalLabel(raw)
		assert.Equal(t, once, CanonicalLabel(once), "raw=%q", raw)
	}
}

func TestExpandSlotsDropsBenchAndRepeats(t *testing.T) {
	counts := map[string]int{
		"QB":       1,
		"RB":       2,
		"WR":       2,
		"TE":       1,
		"RB/WR/TE": 1,
		"BE":       6,
		"IR":       1,
		"TAXI":     2,
	}

	slots := ExpandSlots(counts)

	assert.Len(t, slots, 7)
	assert.NotContains(t, slots, "BE")
	assert.NotContains(t, slots, "IR")
	assert.NotContains(t, slots, "TAXI")

	byLabel := map[string]int{}
	for _, slot := range slots {
		byLabel[slot]++
	}
	assert.Equal(t, map[string]int{"QB": 1, "RB": 2, "WR": 2, "TE": 1, "RB/WR/TE": 1}, byLabel)
}

func TestExpandSlotsDeterministicOrder(t *testing.T) {
	counts := map[string]int{"WR": 2, "QB": 1, "RB": 2}
	first := ExpandSlots(counts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExpandSlots(counts))
	}
}

func TestSlotAllows(t *testing.T) {
	tests := []struct {
		name     string
		slot     string
		eligible []string
		expected bool
	}{
		{name: "direct membership", slot: "RB", eligible: []string{"RB", "RB/WR"}, expected: true},
		{name: "flex intersects", slot: "RB/WR/TE", eligible: []string{"WR"}, expected: true},
		{name: "flex no overlap", slot: "RB/WR/TE", eligible: []string{"QB", "K"}, expected: false},
		{name: "superflex takes qb", slot: "OP", eligible: []string{"QB"}, expected: true},
		{name: "superflex takes tqb alias", slot: "OP", eligible: []string{"TQB"}, expected: true},
		{name: "superflex rejects kicker", slot: "OP", eligible: []string{"K"}, expected: false},
		{name: "utility flex takes te", slot: "ER", eligible: []string{"TE"}, expected: true},
		{name: "utility flex rejects qb", slot: "ER", eligible: []string{"QB"}, expected: false},
		{name: "dst alias matches", slot: "D/ST", eligible: []string{"DST"}, expected: true},
		{name: "no eligibility", slot: "WR", eligible: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SlotAllows(tt.slot, tt.eligible))
		})
	}
}

func TestSumPointsForSlots(t *testing.T) {
	roster := []models.RosterPlayer{
		{Name: "A", Slot: "QB", Points: 20},
		{Name: "B", Slot: "RB", Points: 12},
		{Name: "C", Slot: "BE", Points: 30},
		{Name: "D", Slot: "IR", Points: 8},
	}

	assert.Equal(t, 32.0, SumPointsForSlots(roster, []string{"QB", "RB"}))
	assert.Equal(t, 38.0, SumPointsForSlots(roster, []string{"BE", "IR"}))
	assert.Equal(t, 0.0, SumPointsForSlots(roster, nil))
}

func TestStarterAndBenchLabels(t *testing.T) {
	roster := []models.RosterPlayer{
		{Slot: "QB"}, {Slot: "RB"}, {Slot: "RB"}, {Slot: "BE"}, {Slot: "IR"},
	}

	assert.Equal(t, []string{"QB", "RB"}, StarterSlotLabels(roster))
	assert.Equal(t, []string{"BE", "IR"}, BenchSlotLabels(roster))
}

func TestBuildSlotPlanFromLineup(t *testing.T) {
	roster := []models.RosterPlayer{
		{Slot: "QB"}, {Slot: "RB"}, {Slot: "RB"}, {Slot: "WR"},
		{Slot: "RB/WR/TE"}, {Slot: "BE"}, {Slot: "BE"}, {Slot: "IR"},
	}

	plan := BuildSlotPlanFromLineup(roster)
	assert.Equal(t, []string{"QB", "RB", "RB", "RB/WR/TE", "WR"}, plan)
}
