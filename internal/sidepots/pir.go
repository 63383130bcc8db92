package sidepots

import (
	"sort"

	"github.com/kthorson/sidepotbot/internal/models"
)

// pirSortKey is one column/direction pair in the PIR ordering chain.
type pirSortKey struct {
	value     func(models.PIRRow) float64
	label     func(models.PIRRow) string
	ascending bool
}

var pirRuleMap = map[string]pirSortKey{
	"earliest_week": {value: func(r models.PIRRow) float64 { return float64(r.Week) }, ascending: true},
	"latest_week":   {value: func(r models.PIRRow) float64 { return float64(r.Week) }, ascending: false},
	"higher_bench":  {value: func(r models.PIRRow) float64 { return r.BenchPoints }, ascending: false},
	"alphabetical":  {label: func(r models.PIRRow) string { return r.Owner }, ascending: true},
}

// ComputePIR ranks team-weeks by closest-to-target without going over.
// Rows whose score exceeds the target are disqualified. The ordering is
// ascending delta, then descending points, then the supplied tie-break
// rules in sequence; unknown rule names are ignored.
func ComputePIR(rows []models.TeamWeekScore, target float64, tiebreaks []string, weeksScope []int, labels map[int]string) models.PIRResult {
	scope := weekSet(weeksScope)

	var candidates []models.PIRRow
	for _, row := range rows {
		if scope != nil && !scope[row.Week] {
			continue
		}
		delta := target - row.Points
		if delta < 0 {
			continue
		}
		candidates = append(candidates, models.PIRRow{
			TeamID:      row.TeamID,
			Owner:       displayLabel(row.TeamID, row.Owner, labels),
			Week:        row.Week,
			Points:      row.Points,
			BenchPoints: row.BenchPoints,
			Delta:       delta,
		})
	}

	keys := []pirSortKey{
		{value: func(r models.PIRRow) float64 { return r.Delta }, ascending: true},
		{value: func(r models.PIRRow) float64 { return r.Points }, ascending: false},
	}
	for _, rule := range tiebreaks {
		if key, ok := pirRuleMap[rule]; ok {
			keys = append(keys, key)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		for _, key := range keys {
			if key.label != nil {
				a, b := key.label(candidates[i]), key.label(candidates[j])
				if a != b {
					return (a < b) == key.ascending
				}
				continue
			}
			a, b := key.value(candidates[i]), key.value(candidates[j])
			if a != b {
				return (a < b) == key.ascending
			}
		}
		return false
	})

	result := models.PIRResult{Leaderboard: candidates}
	if len(candidates) > 0 {
		top := candidates[0]
		result.Leader = &models.PIRLeader{
			TeamID: top.TeamID,
			Owner:  top.Owner,
			Week:   top.Week,
			Points: top.Points,
			Delta:  top.Delta,
		}
	}
	return result
}

// weekSet returns nil for an empty scope, meaning all weeks qualify.
func weekSet(weeks []int) map[int]bool {
	if len(weeks) == 0 {
		return nil
	}
	set := make(map[int]bool, len(weeks))
	for _, week := range weeks {
		set[week] = true
	}
	return set
}
