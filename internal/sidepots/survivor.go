package sidepots

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/kthorson/sidepotbot/internal/models"
)

// survivorRule names a cumulative metric and the direction that survives
// the cut (ascending keeps the minimum).
type survivorRule struct {
	metric    string
	ascending bool
}

var survivorRuleMap = map[string]survivorRule{
	"lower_season_eff":    {metric: "season_efficiency", ascending: true},
	"higher_season_eff":   {metric: "season_efficiency", ascending: false},
	"lower_total_points":  {metric: "total_points", ascending: true},
	"higher_total_points": {metric: "total_points", ascending: false},
	"alphabetical":        {metric: "alphabetical", ascending: true},
}

// RunSurvivor replays the elimination pool from the first scoped week.
// Weeks are processed in increasing order through lastCompletedWeek
// inclusive (0 means no upper bound beyond the scope). Each week every
// team's cumulative points and efficiency history advance regardless of
// alive status; from startWeek on, the lowest-scoring alive team is
// eliminated, with ties resolved by the rule chain and a final
// alphabetical fallback. The whole walk is deterministic: identical input
// always yields identical eliminations.
func RunSurvivor(rows []models.TeamWeekScore, startWeek int, tiebreaks []string, weeksScope []int, lastCompletedWeek int, labels map[int]string) models.SurvivorResult {
	weeks := scopedWeeks(rows, weeksScope, lastCompletedWeek)
	teams, owners := teamRoster(rows, labels)

	cumulativeEff := make(map[int][]float64, len(teams))
	cumulativePoints := make(map[int]float64, len(teams))

	alive := append([]int(nil), teams...)
	var eliminations []models.Elimination

	for _, week := range weeks {
		weekScores := map[int]float64{}
		weekSamples := map[int]float64{}
		for _, row := range rows {
			if row.Week != week {
				continue
			}
			weekScores[row.TeamID] = row.Points
			if sample, ok := efficiencySample(row); ok {
				weekSamples[row.TeamID] = sample
			}
		}

		for _, team := range teams {
			cumulativePoints[team] += weekScores[team]
			if sample, ok := weekSamples[team]; ok {
				cumulativeEff[team] = append(cumulativeEff[team], sample)
			}
		}

		if week < startWeek || len(alive) <= 1 {
			continue
		}

		recorded := false
		for _, team := range alive {
			if _, ok := weekScores[team]; ok {
				recorded = true
				break
			}
		}
		if !recorded {
			slog.Warn("survivor: no scores recorded for any alive team, skipping elimination", "week", week)
			continue
		}

		minScore := 0.0
		for i, team := range alive {
			score := weekScores[team]
			if i == 0 || score < minScore {
				minScore = score
			}
		}
		var candidates []int
		for _, team := range alive {
			if weekScores[team] == minScore {
				candidates = append(candidates, team)
			}
		}

		loser := resolveTiebreak(candidates, tiebreaks, owners, cumulativeEff, cumulativePoints)
		alive = removeTeam(alive, loser)
		eliminations = append(eliminations, models.Elimination{
			Week:   week,
			TeamID: loser,
			Owner:  owners[loser],
			Points: weekScores[loser],
		})
	}

	summary := make([]string, 0, len(eliminations))
	for _, event := range eliminations {
		summary = append(summary, fmt.Sprintf("Week %d: %s eliminated (%.2f)", event.Week, event.Owner, event.Points))
	}

	return models.SurvivorResult{
		Eliminations: eliminations,
		Alive:        alive,
		Summary:      summary,
	}
}

// resolveTiebreak narrows tied candidates rule by rule, keeping only those
// at the extreme value each time. Candidates are always walked in sorted
// order; if the chain exhausts without a unique loser the alphabetically
// first label loses.
func resolveTiebreak(candidates []int, tiebreaks []string, owners map[int]string, cumulativeEff map[int][]float64, cumulativePoints map[int]float64) int {
	remaining := append([]int(nil), candidates...)
	sort.Ints(remaining)
	if len(remaining) == 1 {
		return remaining[0]
	}

	rules := make([]survivorRule, 0, len(tiebreaks)+1)
	for _, name := range tiebreaks {
		if rule, ok := survivorRuleMap[name]; ok {
			rules = append(rules, rule)
		}
	}
	rules = append(rules, survivorRuleMap["alphabetical"])

	for _, rule := range rules {
		if rule.metric == "alphabetical" {
			sort.SliceStable(remaining, func(i, j int) bool {
				a, b := owners[remaining[i]], owners[remaining[j]]
				if a != b {
					return a < b
				}
				return remaining[i] < remaining[j]
			})
			return remaining[0]
		}

		values := make(map[int]float64, len(remaining))
		for _, team := range remaining {
			switch rule.metric {
			case "season_efficiency":
				values[team] = meanOf(cumulativeEff[team])
			case "total_points":
				values[team] = cumulativePoints[team]
			}
		}

		extreme := values[remaining[0]]
		for _, team := range remaining[1:] {
			if rule.ascending && values[team] < extreme {
				extreme = values[team]
			} else if !rule.ascending && values[team] > extreme {
				extreme = values[team]
			}
		}
		var kept []int
		for _, team := range remaining {
			if values[team] == extreme {
				kept = append(kept, team)
			}
		}
		remaining = kept
		if len(remaining) == 1 {
			return remaining[0]
		}
	}

	return remaining[0]
}

func scopedWeeks(rows []models.TeamWeekScore, weeksScope []int, lastCompletedWeek int) []int {
	seen := map[int]bool{}
	var weeks []int
	add := func(week int) {
		if seen[week] || (lastCompletedWeek > 0 && week > lastCompletedWeek) {
			return
		}
		seen[week] = true
		weeks = append(weeks, week)
	}
	if len(weeksScope) > 0 {
		for _, week := range weeksScope {
			add(week)
		}
	} else {
		for _, row := range rows {
			add(row.Week)
		}
	}
	sort.Ints(weeks)
	return weeks
}

func teamRoster(rows []models.TeamWeekScore, labels map[int]string) ([]int, map[int]string) {
	owners := map[int]string{}
	var teams []int
	for _, row := range rows {
		if _, ok := owners[row.TeamID]; !ok {
			owners[row.TeamID] = displayLabel(row.TeamID, row.Owner, labels)
			teams = append(teams, row.TeamID)
		}
	}
	sort.Ints(teams)
	return teams, owners
}

func removeTeam(alive []int, team int) []int {
	out := alive[:0]
	for _, id := range alive {
		if id != team {
			out = append(out, id)
		}
	}
	return out
}

func meanOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range samples {
		total += v
	}
	return roundEff(total / float64(len(samples)))
}
