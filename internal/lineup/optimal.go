package lineup

import (
	"math"

	"github.com/kthorson/sidepotbot/internal/models"
)

// SlotPick is one slot assignment in an optimal lineup.
type SlotPick struct {
	Slot   string
	Name   string
	Points float64
}

type memoKey struct {
	slot int
	used uint64
}

// solver holds the per-invocation state for one optimal lineup search.
// Nothing is shared between calls.
type solver struct {
	slots    []string
	points   []float64
	names    []string
	eligible [][]string
	memo     map[memoKey]float64
}

// OptimalScore returns the maximum starting-lineup total achievable for the
// roster under the given slot list, rounded to two decimals. A slot may be
// left empty and a player left unassigned; a player with no matching
// eligibility simply never scores. Exact search with memoization on
// (slot index, used-player bitmask) — greedy assignment is not sufficient
// when flex eligibility overlaps scarce fixed slots.
func OptimalScore(roster []models.RosterPlayer, slots []string) float64 {
	total, _ := OptimalLineup(roster, slots)
	return total
}

// OptimalLineup returns the optimal total along with one assignment that
// achieves it, for display purposes.
func OptimalLineup(roster []models.RosterPlayer, slots []string) (float64, []SlotPick) {
	if len(roster) == 0 || len(slots) == 0 {
		return 0, nil
	}

	s := &solver{
		slots:    make([]string, len(slots)),
		points:   make([]float64, len(roster)),
		names:    make([]string, len(roster)),
		eligible: make([][]string, len(roster)),
		memo:     map[memoKey]float64{},
	}
	for i, slot := range slots {
		s.slots[i] = CanonicalLabel(slot)
	}
	for i, player := range roster {
		s.points[i] = player.Points
		s.names[i] = player.Name
		eligible := make([]string, 0, len(player.EligibleSlots))
		for _, label := range player.EligibleSlots {
			if canonical := CanonicalLabel(label); canonical != "" {
				eligible = append(eligible, canonical)
			}
		}
		s.eligible[i] = eligible
	}

	best := s.best(0, 0)
	picks := s.reconstruct()
	return math.Round(best*100) / 100, picks
}

// best returns the maximum total obtainable filling slots[idx:] with the
// players not yet marked in used.
func (s *solver) best(idx int, used uint64) float64 {
	if idx >= len(s.slots) {
		return 0
	}
	key := memoKey{slot: idx, used: used}
	if value, ok := s.memo[key]; ok {
		return value
	}

	// Leaving the slot empty is always an option.
	value := s.best(idx+1, used)
	for p := range s.points {
		if used&(1<<uint(p)) != 0 {
			continue
		}
		if !SlotAllows(s.slots[idx], s.eligible[p]) {
			continue
		}
		if candidate := s.points[p] + s.best(idx+1, used|1<<uint(p)); candidate > value {
			value = candidate
		}
	}
	s.memo[key] = value
	return value
}

// reconstruct walks the memo table to recover one maximizing assignment.
// Comparisons reuse the exact sums stored during the search, so equality
// checks on float64 are reliable here.
func (s *solver) reconstruct() []SlotPick {
	var picks []SlotPick
	var used uint64
	for idx := range s.slots {
		target := s.best(idx, used)
		if target == s.best(idx+1, used) {
			continue // slot left empty
		}
		for p := range s.points {
			if used&(1<<uint(p)) != 0 || !SlotAllows(s.slots[idx], s.eligible[p]) {
				continue
			}
			if s.points[p]+s.best(idx+1, used|1<<uint(p)) == target {
				picks = append(picks, SlotPick{
					Slot:   s.slots[idx],
					Name:   s.names[p],
					Points: s.points[p],
				})
				used |= 1 << uint(p)
				break
			}
		}
	}
	return picks
}
