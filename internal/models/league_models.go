package models

import "time"

type LeagueMetadata struct {
	LeagueID             int
	Name                 string
	CurrentWeek          int
	CurrentScoringPeriod int
	SeasonID             int
	FirstWeek            int
	LastWeek             int
	IsActive             bool
	LastUpdated          time.Time
}

// LeagueRules is the slot configuration the lineup solver scores against.
// SlotCounts is keyed by canonical slot label (QB, RB, RB/WR/TE, ...).
type LeagueRules struct {
	SlotCounts         map[string]int
	RegularSeasonWeeks int
}

// RosterPlayer is the single normalized player record. All platform field
// probing happens once at the ESPN boundary; everything downstream reads
// these fields only.
type RosterPlayer struct {
	Name          string
	Points        float64
	Slot          string
	Position      string
	EligibleSlots []string
}

// TeamWeekScore is one team's scoring line for one week. Immutable after
// construction; OptimalPoints and Efficiency are filled in by scoring.
type TeamWeekScore struct {
	TeamID        int
	Owner         string
	Week          int
	Points        float64
	BenchPoints   float64
	OptimalPoints float64
	Efficiency    float64
	Roster        []RosterPlayer
}

type PIRLeader struct {
	TeamID int
	Owner  string
	Week   int
	Points float64
	Delta  float64
}

type PIRRow struct {
	TeamID      int
	Owner       string
	Week        int
	Points      float64
	BenchPoints float64
	Delta       float64
}

type PIRResult struct {
	Leader      *PIRLeader
	Leaderboard []PIRRow
}

type SeasonEffRow struct {
	TeamID           int
	Owner            string
	GamesPlayed      int
	TotalPoints      float64
	TotalOptimal     float64
	SeasonEfficiency float64
	MedianEfficiency float64
}

type SeasonEffResult struct {
	Table  []SeasonEffRow
	Top    []SeasonEffRow
	Bottom []SeasonEffRow
}

type Elimination struct {
	Week   int
	TeamID int
	Owner  string
	Points float64
}

type SurvivorResult struct {
	Eliminations []Elimination
	Alive        []int
	Summary      []string
}
