package sidepots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthorson/sidepotbot/internal/models"
)

func effRow(teamID int, owner string, week int, eff float64) models.TeamWeekScore {
	return models.TeamWeekScore{
		TeamID:        teamID,
		Owner:         owner,
		Week:          week,
		Points:        eff * 100,
		OptimalPoints: 100,
		Efficiency:    eff,
	}
}

func TestSeasonEfficiencyMedianTiebreak(t *testing.T) {
	// Equal mean efficiency (0.9) for both teams across three weeks; Beta
	// carries the higher median and must rank first.
	rows := []models.TeamWeekScore{
		effRow(1, "Alpha", 1, 1.0), effRow(2, "Beta", 1, 0.95),
		effRow(1, "Alpha", 2, 0.8), effRow(2, "Beta", 2, 0.95),
		effRow(1, "Alpha", 3, 0.9), effRow(2, "Beta", 3, 0.8),
	}

	result := SeasonEfficiency(rows, []int{1, 2, 3}, []string{"higher_median", "higher_total_points", "alphabetical"}, nil)

	require.Len(t, result.Table, 2)
	assert.Equal(t, "Beta", result.Table[0].Owner)
	assert.InDelta(t, result.Table[0].SeasonEfficiency, result.Table[1].SeasonEfficiency, 1e-9)
	assert.Greater(t, result.Table[0].MedianEfficiency, result.Table[1].MedianEfficiency)
}

func TestSeasonEfficiencyAggregates(t *testing.T) {
	rows := []models.TeamWeekScore{
		effRow(1, "Alpha", 1, 0.8),
		effRow(1, "Alpha", 2, 1.0),
	}

	result := SeasonEfficiency(rows, nil, nil, nil)

	require.Len(t, result.Table, 1)
	row := result.Table[0]
	assert.Equal(t, 2, row.GamesPlayed)
	assert.InDelta(t, 180.0, row.TotalPoints, 1e-9)
	assert.InDelta(t, 200.0, row.TotalOptimal, 1e-9)
	assert.InDelta(t, 0.9, row.SeasonEfficiency, 1e-9)
}

func TestSeasonEfficiencyTopAndBottomSlices(t *testing.T) {
	var rows []models.TeamWeekScore
	owners := []string{"A", "B", "C", "D", "E"}
	for i, owner := range owners {
		rows = append(rows, effRow(i+1, owner, 1, 0.5+float64(i)*0.1))
	}

	result := SeasonEfficiency(rows, nil, nil, nil)

	require.Len(t, result.Table, 5)
	require.Len(t, result.Top, 3)
	require.Len(t, result.Bottom, 3)
	assert.Equal(t, "E", result.Top[0].Owner)
	assert.Equal(t, "A", result.Bottom[2].Owner)
}

func TestSeasonEfficiencyAlphabeticalFallback(t *testing.T) {
	rows := []models.TeamWeekScore{
		effRow(2, "Bravo", 1, 0.9),
		effRow(1, "Alpha", 1, 0.9),
	}

	result := SeasonEfficiency(rows, nil, nil, nil)

	require.Len(t, result.Table, 2)
	assert.Equal(t, "Alpha", result.Table[0].Owner)
}

func TestSeasonEfficiencyEmptyInput(t *testing.T) {
	result := SeasonEfficiency(nil, nil, nil, nil)

	assert.Empty(t, result.Table)
	assert.Empty(t, result.Top)
	assert.Empty(t, result.Bottom)
}
