package sidepots

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kthorson/sidepotbot/internal/models"
)

type leaderboardSortKey struct {
	value     func(models.SeasonEffRow) float64
	label     func(models.SeasonEffRow) string
	ascending bool
}

var leaderboardRuleMap = map[string]leaderboardSortKey{
	"higher_median":       {value: func(r models.SeasonEffRow) float64 { return r.MedianEfficiency }, ascending: false},
	"higher_total_points": {value: func(r models.SeasonEffRow) float64 { return r.TotalPoints }, ascending: false},
	"lower_total_points":  {value: func(r models.SeasonEffRow) float64 { return r.TotalPoints }, ascending: true},
	"alphabetical":        {label: func(r models.SeasonEffRow) string { return r.Owner }, ascending: true},
}

// SeasonEfficiency groups per-team-week efficiency into season aggregates
// and ranks them. The reported season efficiency is the mean of the weekly
// efficiency samples; the median rides along as a tie-break input. Ranking
// is descending season efficiency, then descending games played, then the
// supplied rules, with alphabetical as the guaranteed final fallback.
func SeasonEfficiency(rows []models.TeamWeekScore, weeks []int, tiebreaks []string, labels map[int]string) models.SeasonEffResult {
	scope := weekSet(weeks)

	type teamAgg struct {
		row     models.SeasonEffRow
		samples []float64
	}
	byTeam := map[int]*teamAgg{}
	var order []int

	for _, row := range rows {
		if scope != nil && !scope[row.Week] {
			continue
		}
		agg, ok := byTeam[row.TeamID]
		if !ok {
			agg = &teamAgg{row: models.SeasonEffRow{
				TeamID: row.TeamID,
				Owner:  displayLabel(row.TeamID, row.Owner, labels),
			}}
			byTeam[row.TeamID] = agg
			order = append(order, row.TeamID)
		}
		agg.row.GamesPlayed++
		agg.row.TotalPoints += row.Points
		agg.row.TotalOptimal += row.OptimalPoints
		if sample, ok := efficiencySample(row); ok {
			agg.samples = append(agg.samples, sample)
		}
	}

	sort.Ints(order)
	table := make([]models.SeasonEffRow, 0, len(order))
	for _, teamID := range order {
		agg := byTeam[teamID]
		if len(agg.samples) > 0 {
			sort.Float64s(agg.samples)
			agg.row.SeasonEfficiency = roundEff(stat.Mean(agg.samples, nil))
			agg.row.MedianEfficiency = roundEff(stat.Quantile(0.5, stat.Empirical, agg.samples, nil))
		}
		table = append(table, agg.row)
	}

	keys := []leaderboardSortKey{
		{value: func(r models.SeasonEffRow) float64 { return r.SeasonEfficiency }, ascending: false},
		{value: func(r models.SeasonEffRow) float64 { return float64(r.GamesPlayed) }, ascending: false},
	}
	for _, rule := range tiebreaks {
		if key, ok := leaderboardRuleMap[rule]; ok {
			keys = append(keys, key)
		}
	}
	keys = append(keys, leaderboardRuleMap["alphabetical"])

	sort.SliceStable(table, func(i, j int) bool {
		for _, key := range keys {
			if key.label != nil {
				a, b := key.label(table[i]), key.label(table[j])
				if a != b {
					return (a < b) == key.ascending
				}
				continue
			}
			a, b := key.value(table[i]), key.value(table[j])
			if a != b {
				return (a < b) == key.ascending
			}
		}
		return false
	})

	return models.SeasonEffResult{
		Table:  table,
		Top:    headRows(table, 3),
		Bottom: tailRows(table, 3),
	}
}

// roundEff clips accumulated floating-point dust from derived efficiency
// metrics so the tie-break chain compares on real differences only.
func roundEff(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// efficiencySample returns the weekly efficiency for a score row: actual
// over optimal when an optimal is known, otherwise the efficiency recorded
// on the row, otherwise nothing.
func efficiencySample(row models.TeamWeekScore) (float64, bool) {
	if row.OptimalPoints > 0 {
		return row.Points / row.OptimalPoints, true
	}
	if row.Efficiency != 0 {
		return row.Efficiency, true
	}
	return 0, false
}

func headRows(table []models.SeasonEffRow, n int) []models.SeasonEffRow {
	if len(table) < n {
		n = len(table)
	}
	return append([]models.SeasonEffRow(nil), table[:n]...)
}

func tailRows(table []models.SeasonEffRow, n int) []models.SeasonEffRow {
	if len(table) < n {
		n = len(table)
	}
	return append([]models.SeasonEffRow(nil), table[len(table)-n:]...)
}
