package sidepots

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthorson/sidepotbot/internal/models"
)

func score(teamID, week int, actual, optimal float64) models.TeamWeekScore {
	return models.TeamWeekScore{
		TeamID:        teamID,
		Owner:         "",
		Week:          week,
		Points:        actual,
		OptimalPoints: optimal,
	}
}

func TestUpdateEfficiencySkipsDuplicates(t *testing.T) {
	scores := []models.TeamWeekScore{
		score(1, 1, 100, 120),
		score(1, 1, 200, 300), // duplicate (team 1, week 1) must be ignored
		score(1, 2, 90, 110),
		score(2, 1, 95, 100),
		score(2, 2, 105, 130),
	}

	stats := map[int]*EffStat{}
	seen := map[TeamWeek]struct{}{}
	UpdateEfficiency(stats, scores, seen)

	require.Contains(t, stats, 1)
	require.Contains(t, stats, 2)
	assert.Equal(t, 2, stats[1].Weeks)
	assert.Equal(t, 190.0, stats[1].ActualSum)
	assert.Equal(t, 230.0, stats[1].OptimalSum)
	assert.Equal(t, 200.0, stats[2].ActualSum)
	assert.Equal(t, 230.0, stats[2].OptimalSum)
	assert.InDelta(t, 190.0/230.0, stats[1].Efficiency(), 1e-12)
}

func TestUpdateEfficiencyIdempotentAcrossReplays(t *testing.T) {
	scores := []models.TeamWeekScore{score(2, 1, 88, 100)}

	stats := map[int]*EffStat{}
	seen := map[TeamWeek]struct{}{}
	UpdateEfficiency(stats, scores, seen)
	UpdateEfficiency(stats, scores, seen) // replayed fetch

	assert.Equal(t, 1, stats[2].Weeks)
	assert.Equal(t, 88.0, stats[2].ActualSum)
	assert.Equal(t, 100.0, stats[2].OptimalSum)
}

func TestEfficiencyZeroWhenNoOptimal(t *testing.T) {
	entry := &EffStat{TeamID: 1, ActualSum: 50}
	assert.Equal(t, 0.0, entry.Efficiency())
}

func TestFormatEfficiencyTable(t *testing.T) {
	stats := map[int]*EffStat{
		1: {TeamID: 1, ActualSum: 190, OptimalSum: 230, Weeks: 2},
		2: {TeamID: 2, ActualSum: 200, OptimalSum: 230, Weeks: 2},
	}
	labels := map[int]string{1: "Team One", 2: "Team Two"}

	table := FormatEfficiencyTable(labels, stats)
	lines := strings.Split(table, "\n")

	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "Season Efficiency", lines[0])
	assert.Contains(t, lines[2], "Actual")
	assert.Contains(t, lines[2], "Optimal")
	assert.Contains(t, lines[2], "Eff%")
	// Team Two has the higher efficiency and must come first.
	assert.Contains(t, lines[3], "Team Two")
	assert.Contains(t, lines[4], "Team One")
	for _, line := range lines[3:] {
		assert.True(t, strings.HasSuffix(line, "%"))
	}
}

func TestLabelForFallback(t *testing.T) {
	assert.Equal(t, "Team 7", LabelFor(7, nil))
	assert.Equal(t, "Spoony Squad", LabelFor(2, map[int]string{2: "Spoony Squad"}))
}
