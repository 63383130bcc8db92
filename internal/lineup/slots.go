// Package lineup models ESPN lineup slots and computes optimal lineup
// scores for a weekly roster under a league's slot configuration.
package lineup

import (
	"sort"
	"strings"

	"github.com/kthorson/sidepotbot/internal/models"
)

// Slot labels that never count toward a starting lineup.
var starterExcludes = map[string]bool{
	"BE":    true,
	"BN":    true,
	"BENCH": true,
	"IR":    true,
	"RES":   true,
	"INJ":   true,
	"TAXI":  true,
}

var dstAliases = map[string]bool{
	"D/ST":    true,
	"DST":     true,
	"D":       true,
	"DEF":     true,
	"DST/DEF": true,
}

// Superflex and defensive-flex eligibility. Fixed table, not configurable.
var superflexPositions = []string{"QB", "RB", "WR", "TE", "TQB"}
var utilityFlexPositions = []string{"RB", "WR", "TE"}

// CanonicalLabel normalizes a raw slot or position label: uppercased,
// whitespace stripped, defense/special-teams aliases collapsed to DST.
// Idempotent.
func CanonicalLabel(raw string) string {
	text := strings.ToUpper(strings.TrimSpace(raw))
	text = strings.ReplaceAll(text, " ", "")
	if text == "" {
		return ""
	}
	if dstAliases[text] {
		return "DST"
	}
	if !strings.Contains(text, "/") && (strings.Contains(text, "DST") || strings.Contains(text, "DEF")) {
		return "DST"
	}
	return text
}

// IsBenchLabel reports whether a canonical slot label is a bench, IR, or
// taxi slot excluded from starting totals.
func IsBenchLabel(label string) bool {
	return starterExcludes[CanonicalLabel(label)]
}

// ExpandSlots turns a {label: count} configuration into the concrete list
// of slots a lineup must fill. Bench-family slots are dropped. Labels are
// emitted in sorted order so equal configurations always expand equally.
func ExpandSlots(slotCounts map[string]int) []string {
	labels := make([]string, 0, len(slotCounts))
	for label := range slotCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var slots []string
	for _, label := range labels {
		canonical := CanonicalLabel(label)
		if canonical == "" || starterExcludes[canonical] {
			continue
		}
		for i := 0; i < slotCounts[label]; i++ {
			slots = append(slots, canonical)
		}
	}
	return slots
}

// SlotAllows reports whether a player with the given eligible slot labels
// may occupy the slot. Slash-joined labels match when any part intersects
// the player's eligibility; OP is the superflex slot and ER the utility
// defensive flex.
func SlotAllows(slot string, eligible []string) bool {
	slot = CanonicalLabel(slot)
	set := make(map[string]bool, len(eligible))
	for _, label := range eligible {
		set[CanonicalLabel(label)] = true
	}

	if set[slot] {
		return true
	}
	if strings.Contains(slot, "/") {
		for _, part := range strings.Split(slot, "/") {
			if part != "" && set[CanonicalLabel(part)] {
				return true
			}
		}
		return false
	}
	switch slot {
	case "OP":
		for _, pos := range superflexPositions {
			if set[pos] {
				return true
			}
		}
	case "ER":
		for _, pos := range utilityFlexPositions {
			if set[pos] {
				return true
			}
		}
	}
	return false
}

// StarterSlotLabels returns the distinct non-bench slot labels a roster's
// players were actually started in.
func StarterSlotLabels(roster []models.RosterPlayer) []string {
	seen := map[string]bool{}
	var labels []string
	for _, player := range roster {
		label := CanonicalLabel(player.Slot)
		if label == "" || starterExcludes[label] || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// BenchSlotLabels returns the bench-family labels present on a roster.
func BenchSlotLabels(roster []models.RosterPlayer) []string {
	seen := map[string]bool{}
	var labels []string
	for _, player := range roster {
		label := CanonicalLabel(player.Slot)
		if label == "" || !starterExcludes[label] || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// SumPointsForSlots sums the points of players started in any of the given
// slot labels. This is the canonical source for both the actual starting
// total and the bench total.
func SumPointsForSlots(roster []models.RosterPlayer, labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	include := make(map[string]bool, len(labels))
	for _, label := range labels {
		include[CanonicalLabel(label)] = true
	}
	total := 0.0
	for _, player := range roster {
		if include[CanonicalLabel(player.Slot)] {
			total += player.Points
		}
	}
	return total
}

// BuildSlotPlanFromLineup derives the list of slots to fill from the slots
// the manager actually started. Used when league settings are unavailable;
// the slot multiset is fixed per league, so any week's lineup yields the
// same plan.
func BuildSlotPlanFromLineup(roster []models.RosterPlayer) []string {
	var slots []string
	for _, player := range roster {
		label := CanonicalLabel(player.Slot)
		if label == "" || starterExcludes[label] {
			continue
		}
		slots = append(slots, label)
	}
	sort.Strings(slots)
	return slots
}
