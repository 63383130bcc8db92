// Package sidepots computes the league's weekly side pot standings: season
// lineup efficiency, the Price-Is-Right pot, and the survivor pool. Every
// computation is deterministic over an in-memory score table; data-quality
// problems degrade to empty or zero results instead of errors.
package sidepots

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kthorson/sidepotbot/internal/models"
)

// TeamWeek identifies one team's scoring line for one week. Used to
// deduplicate replayed fetches.
type TeamWeek struct {
	TeamID int
	Week   int
}

// EffStat accumulates a team's actual and optimal points across weeks.
type EffStat struct {
	TeamID     int
	ActualSum  float64
	OptimalSum float64
	Weeks      int
}

// Efficiency returns the team's season efficiency ratio, 0 when no optimal
// points have been recorded.
func (s *EffStat) Efficiency() float64 {
	if s.OptimalSum <= 0 {
		return 0
	}
	return s.ActualSum / s.OptimalSum
}

// UpdateEfficiency folds week scores into the per-team accumulators.
// A (team, week) pair already present in seen is skipped entirely, so
// replaying the same fetch is a no-op.
func UpdateEfficiency(stats map[int]*EffStat, scores []models.TeamWeekScore, seen map[TeamWeek]struct{}) {
	for _, score := range scores {
		key := TeamWeek{TeamID: score.TeamID, Week: score.Week}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entry, ok := stats[score.TeamID]
		if !ok {
			entry = &EffStat{TeamID: score.TeamID}
			stats[score.TeamID] = entry
		}
		entry.ActualSum += score.Points
		entry.OptimalSum += score.OptimalPoints
		entry.Weeks++
	}
}

// FormatEfficiencyTable renders the accumulated stats as a fixed-width
// table ordered by descending efficiency.
func FormatEfficiencyTable(labels map[int]string, stats map[int]*EffStat) string {
	rows := make([]*EffStat, 0, len(stats))
	for _, entry := range stats {
		rows = append(rows, entry)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Efficiency() != rows[j].Efficiency() {
			return rows[i].Efficiency() > rows[j].Efficiency()
		}
		return LabelFor(rows[i].TeamID, labels) < LabelFor(rows[j].TeamID, labels)
	})

	var sb strings.Builder
	sb.WriteString("Season Efficiency\n")
	sb.WriteString(strings.Repeat("─", 56) + "\n")
	sb.WriteString(fmt.Sprintf("%-26s %8s %9s %8s\n", "Team", "Actual", "Optimal", "Eff%"))
	for _, entry := range rows {
		sb.WriteString(fmt.Sprintf(
			"%-26s %8.1f %9.1f %7.2f%%\n",
			LabelFor(entry.TeamID, labels),
			entry.ActualSum,
			entry.OptimalSum,
			entry.Efficiency()*100,
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// LabelFor returns a display label for a team id, falling back to a
// generic name when the league did not provide one.
func LabelFor(teamID int, labels map[int]string) string {
	if label, ok := labels[teamID]; ok && label != "" {
		return label
	}
	return fmt.Sprintf("Team %d", teamID)
}

// displayLabel prefers the league label map, then the owner recorded on
// the score row itself.
func displayLabel(teamID int, rowOwner string, labels map[int]string) string {
	if label, ok := labels[teamID]; ok && label != "" {
		return label
	}
	if rowOwner != "" {
		return rowOwner
	}
	return fmt.Sprintf("Team %d", teamID)
}
