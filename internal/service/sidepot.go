package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kthorson/sidepotbot/internal/api/espn"
	"github.com/kthorson/sidepotbot/internal/config"
	"github.com/kthorson/sidepotbot/internal/lineup"
	"github.com/kthorson/sidepotbot/internal/models"
	"github.com/kthorson/sidepotbot/internal/repository/memory"
	"github.com/kthorson/sidepotbot/internal/sidepots"
	"github.com/kthorson/sidepotbot/internal/webhook"
)

// LeagueAPI is the slice of the ESPN client the service consumes.
type LeagueAPI interface {
	GetLeagueMetadata() (*models.LeagueMetadata, error)
	GetLeagueRules() (*models.LeagueRules, error)
	GetTeamLabels() (map[int]string, error)
	LastCompletedWeek(startWeek, endWeek int) (int, error)
	FetchWeekScores(week int) ([]models.TeamWeekScore, error)
}

var _ LeagueAPI = (*espn.API)(nil)

// SidePotService assembles season data from the league API and renders the
// side pot reports.
type SidePotService struct {
	api    LeagueAPI
	repo   *memory.Repository
	league *config.League
	hooks  *webhook.Discord
}

func NewSidePotService(api LeagueAPI, repo *memory.Repository, league *config.League, hooks *webhook.Discord) *SidePotService {
	return &SidePotService{api: api, repo: repo, league: league, hooks: hooks}
}

// SeasonData is everything one report run needs: the scored week rows plus
// the league context they were scored under.
type SeasonData struct {
	Labels        map[int]string
	Rules         *models.LeagueRules
	Weeks         []int
	Rows          []models.TeamWeekScore
	LastCompleted int
}

func (s *SidePotService) getLeagueMetadata() (*models.LeagueMetadata, error) {
	metadata := s.repo.GetMetadata()
	if metadata == nil || time.Since(metadata.LastUpdated) > 24*time.Hour {
		newMetadata, err := s.api.GetLeagueMetadata()
		if err != nil {
			return nil, err
		}
		s.repo.SaveMetadata(newMetadata)
		return newMetadata, nil
	}
	return metadata, nil
}

// GetCurrentWeek returns the league's current matchup period, refreshing
// cached metadata daily.
func (s *SidePotService) GetCurrentWeek() (int, error) {
	metadata, err := s.getLeagueMetadata()
	if err != nil {
		return 0, fmt.Errorf("error fetching league metadata: %w", err)
	}
	return metadata.CurrentWeek, nil
}

func (s *SidePotService) getRules() (*models.LeagueRules, error) {
	if rules := s.repo.GetRules(); rules != nil {
		return rules, nil
	}
	rules, err := s.api.GetLeagueRules()
	if err != nil {
		return nil, fmt.Errorf("error fetching league rules: %w", err)
	}
	if s.league.RegularSeasonWeeks > 0 {
		rules.RegularSeasonWeeks = s.league.RegularSeasonWeeks
	}
	s.repo.SaveRules(rules)
	return rules, nil
}

func (s *SidePotService) getTeamLabels() (map[int]string, error) {
	if labels := s.repo.GetTeamLabels(); labels != nil {
		return labels, nil
	}
	labels, err := s.api.GetTeamLabels()
	if err != nil {
		return nil, fmt.Errorf("error fetching team labels: %w", err)
	}
	s.repo.SaveTeamLabels(labels)
	return labels, nil
}

// getWeekScores fetches and scores one week, serving repeats from the
// cache. When the league's slot configuration is known the optimal total is
// recomputed against it; otherwise the lineup-derived plan from the fetch
// stands.
func (s *SidePotService) getWeekScores(week int, rules *models.LeagueRules) ([]models.TeamWeekScore, error) {
	if scores, ok := s.repo.GetWeekScores(week); ok {
		return scores, nil
	}

	scores, err := s.api.FetchWeekScores(week)
	if err != nil {
		return nil, fmt.Errorf("error fetching week %d scores: %w", week, err)
	}

	var slots []string
	if rules != nil {
		slots = lineup.ExpandSlots(rules.SlotCounts)
	}
	for i := range scores {
		if len(slots) > 0 {
			scores[i].OptimalPoints = lineup.OptimalScore(scores[i].Roster, slots)
		}
		if scores[i].OptimalPoints > 0 {
			scores[i].Efficiency = scores[i].Points / scores[i].OptimalPoints
		}
	}

	s.repo.SaveWeekScores(week, scores)
	return scores, nil
}

// GetSeasonData resolves a week specifier and returns the scored rows for
// those weeks. An empty specifier means every completed week.
func (s *SidePotService) GetSeasonData(weeksSpec string) (*SeasonData, error) {
	rules, err := s.getRules()
	if err != nil {
		return nil, err
	}
	labels, err := s.getTeamLabels()
	if err != nil {
		return nil, err
	}

	lastCompleted, err := s.api.LastCompletedWeek(1, rules.RegularSeasonWeeks)
	if err != nil {
		return nil, fmt.Errorf("error finding last completed week: %w", err)
	}

	if weeksSpec == "" {
		weeksSpec = "auto"
	}
	weeks, err := espn.ParseWeeks(weeksSpec, rules.RegularSeasonWeeks, lastCompleted)
	if err != nil {
		return nil, err
	}

	var rows []models.TeamWeekScore
	for _, week := range weeks {
		scores, err := s.getWeekScores(week, rules)
		if err != nil {
			return nil, err
		}
		rows = append(rows, scores...)
	}

	return &SeasonData{
		Labels:        labels,
		Rules:         rules,
		Weeks:         weeks,
		Rows:          rows,
		LastCompleted: lastCompleted,
	}, nil
}

func (s *SidePotService) GetPIRReport(weeksSpec string) (string, error) {
	data, err := s.GetSeasonData(weeksSpec)
	if err != nil {
		return "", err
	}

	result := sidepots.ComputePIR(data.Rows, s.league.PIRTarget, s.league.Tiebreaks.PIR, data.Weeks, data.Labels)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 *Price Is Right* (target %.0f)\n\n", s.league.PIRTarget))

	if result.Leader == nil {
		sb.WriteString("No qualifying scores yet. Everyone went over!")
		return sb.String(), nil
	}

	leader := result.Leader
	sb.WriteString(fmt.Sprintf("Leader: *%s*\n", leader.Owner))
	sb.WriteString(fmt.Sprintf("Week %d: %.2f (Δ %.2f)\n\n", leader.Week, leader.Points, leader.Delta))

	limit := 5
	if len(result.Leaderboard) < limit {
		limit = len(result.Leaderboard)
	}
	for i := 0; i < limit; i++ {
		row := result.Leaderboard[i]
		sb.WriteString(fmt.Sprintf("%d. %s - Week %d: %.2f (Δ %.2f)\n",
			i+1, row.Owner, row.Week, row.Points, row.Delta))
	}
	return sb.String(), nil
}

func (s *SidePotService) GetEfficiencyReport(weeksSpec string) (string, error) {
	data, err := s.GetSeasonData(weeksSpec)
	if err != nil {
		return "", err
	}

	stats := map[int]*sidepots.EffStat{}
	seen := map[sidepots.TeamWeek]struct{}{}
	sidepots.UpdateEfficiency(stats, data.Rows, seen)

	result := sidepots.SeasonEfficiency(data.Rows, data.Weeks, s.league.Tiebreaks.Efficiency, data.Labels)

	var sb strings.Builder
	sb.WriteString("📈 *Lineup Efficiency*\n\n")
	sb.WriteString("```\n")
	sb.WriteString(sidepots.FormatEfficiencyTable(data.Labels, stats))
	sb.WriteString("\n```\n")

	if len(result.Top) > 0 {
		sb.WriteString("\nBest starters:\n")
		for _, row := range result.Top {
			sb.WriteString(fmt.Sprintf("• %s: %.3f (Pts %.1f)\n", row.Owner, row.SeasonEfficiency, row.TotalPoints))
		}
	}
	if len(result.Bottom) > 0 {
		sb.WriteString("\nMost points left on the bench:\n")
		for _, row := range result.Bottom {
			sb.WriteString(fmt.Sprintf("• %s: %.3f (Pts %.1f)\n", row.Owner, row.SeasonEfficiency, row.TotalPoints))
		}
	}
	return sb.String(), nil
}

func (s *SidePotService) GetSurvivorReport(weeksSpec string) (string, error) {
	data, err := s.GetSeasonData(weeksSpec)
	if err != nil {
		return "", err
	}

	result := sidepots.RunSurvivor(data.Rows, s.league.SurvivorStartWeek,
		s.league.Tiebreaks.Survivor, data.Weeks, data.LastCompleted, data.Labels)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💀 *Survivor Pool* (from week %d)\n\n", s.league.SurvivorStartWeek))

	if len(result.Eliminations) == 0 {
		sb.WriteString("Nobody has been eliminated yet.\n")
	}
	for _, line := range result.Summary {
		sb.WriteString(line + "\n")
	}

	alive := make([]string, 0, len(result.Alive))
	aliveIDs := append([]int(nil), result.Alive...)
	sort.Ints(aliveIDs)
	for _, teamID := range aliveIDs {
		alive = append(alive, sidepots.LabelFor(teamID, data.Labels))
	}
	sb.WriteString("\nAlive: " + strings.Join(alive, ", "))
	return sb.String(), nil
}

// GetTeamLineup renders one team's latest completed week against its
// optimal lineup. The name is matched fuzzily against team labels.
func (s *SidePotService) GetTeamLineup(teamName string) (string, error) {
	data, err := s.GetSeasonData("")
	if err != nil {
		return "", err
	}
	if data.LastCompleted < 1 {
		return "No completed weeks yet.", nil
	}

	teamID, ok := matchTeam(teamName, data.Labels)
	if !ok {
		return fmt.Sprintf("🔍 No team found matching '%s'.", teamName), nil
	}

	var row *models.TeamWeekScore
	for i := range data.Rows {
		if data.Rows[i].TeamID == teamID && data.Rows[i].Week == data.LastCompleted {
			row = &data.Rows[i]
			break
		}
	}
	if row == nil {
		return fmt.Sprintf("No week %d scores for %s.", data.LastCompleted, sidepots.LabelFor(teamID, data.Labels)), nil
	}

	slots := lineup.ExpandSlots(data.Rules.SlotCounts)
	if len(slots) == 0 {
		slots = lineup.BuildSlotPlanFromLineup(row.Roster)
	}
	optimal, picks := lineup.OptimalLineup(row.Roster, slots)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s - Week %d*\n\n", sidepots.LabelFor(teamID, data.Labels), row.Week))
	sb.WriteString(fmt.Sprintf("Actual: %.2f | Optimal: %.2f | Bench: %.2f\n\n", row.Points, optimal, row.BenchPoints))

	sb.WriteString("*Optimal lineup:*\n")
	for _, pick := range picks {
		sb.WriteString(fmt.Sprintf("▫️ %s %s - %.2f pts\n", pick.Slot, pick.Name, pick.Points))
	}
	return sb.String(), nil
}

// matchTeam resolves a free-form team name against the label map using
// Levenshtein similarity with a fixed threshold.
func matchTeam(teamName string, labels map[int]string) (int, bool) {
	bestID := 0
	bestSimilarity := 0.0
	threshold := 0.4

	for teamID, label := range labels {
		distance := fuzzy.LevenshteinDistance(strings.ToLower(teamName), strings.ToLower(label))
		maxLen := len(teamName)
		if len(label) > maxLen {
			maxLen = len(label)
		}
		if maxLen == 0 {
			continue
		}
		similarity := 1 - float64(distance)/float64(maxLen)

		contains := strings.Contains(strings.ToLower(label), strings.ToLower(strings.TrimSpace(teamName)))
		if contains && similarity < 0.99 {
			similarity = 0.99
		}
		if similarity > threshold && similarity > bestSimilarity {
			bestSimilarity = similarity
			bestID = teamID
		}
	}
	return bestID, bestID != 0
}

// reportSpec binds a report key to its builder; the key doubles as the
// webhook lookup key.
type reportSpec struct {
	key   string
	title string
	build func(weeksSpec string) (string, error)
}

func (s *SidePotService) reports() []reportSpec {
	return []reportSpec{
		{key: "pir", title: "Price Is Right", build: s.GetPIRReport},
		{key: "efficiency", title: "Lineup Efficiency", build: s.GetEfficiencyReport},
		{key: "survivor", title: "Survivor Pool", build: s.GetSurvivorReport},
	}
}

// RunReports builds the requested reports and posts each to its Discord
// webhook. mode selects one report key or "all". With dryRun the rendered
// reports are logged instead of posted.
func (s *SidePotService) RunReports(ctx context.Context, mode, weeksSpec string, dryRun bool) error {
	var failed []string
	ran := 0

	for _, spec := range s.reports() {
		if mode != "all" && mode != spec.key {
			continue
		}
		ran++

		report, err := spec.build(weeksSpec)
		if err != nil {
			slog.Error("building report", "report", spec.key, "error", err)
			failed = append(failed, spec.key)
			continue
		}

		if dryRun || s.hooks == nil || !s.hooks.Enabled(spec.key) {
			slog.Info("report built (not posted)", "report", spec.key, "dry_run", dryRun)
			fmt.Println(report)
			continue
		}

		if err := s.hooks.Post(ctx, spec.key, spec.title, strings.Split(report, "\n")); err != nil {
			slog.Error("posting report", "report", spec.key, "error", err)
			failed = append(failed, spec.key)
			continue
		}
		slog.Info("report posted", "report", spec.key)
	}

	if ran == 0 {
		return fmt.Errorf("unknown report mode %q", mode)
	}
	if len(failed) > 0 {
		return fmt.Errorf("reports failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
