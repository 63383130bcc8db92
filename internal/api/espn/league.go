package espn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kthorson/sidepotbot/internal/lineup"
	"github.com/kthorson/sidepotbot/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

// ESPN lineup slot ids. 23 is the RB/WR/TE flex and 7 the OP superflex;
// 20/21 are the bench and IR slots the side pots exclude.
var slotIDNames = map[int]string{
	0:  "QB",
	1:  "TQB",
	2:  "RB",
	3:  "RB/WR",
	4:  "WR",
	5:  "WR/TE",
	6:  "TE",
	7:  "OP",
	8:  "DT",
	9:  "DE",
	10: "LB",
	11: "DL",
	12: "CB",
	13: "S",
	14: "DB",
	15: "DP",
	16: "D/ST",
	17: "K",
	18: "P",
	19: "HC",
	20: "BE",
	21: "IR",
	23: "RB/WR/TE",
	24: "ER",
}

var positionIDNames = map[int]string{
	1:  "QB",
	2:  "RB",
	3:  "WR",
	4:  "TE",
	5:  "K",
	7:  "P",
	9:  "DL",
	10: "LB",
	11: "DB",
	16: "D/ST",
}

func slotLabel(slotID int) string {
	if name, ok := slotIDNames[slotID]; ok {
		return lineup.CanonicalLabel(name)
	}
	return strconv.Itoa(slotID)
}

func positionLabel(positionID int, fallback string) string {
	if name, ok := positionIDNames[positionID]; ok {
		return lineup.CanonicalLabel(name)
	}
	return lineup.CanonicalLabel(fallback)
}

// PreflightLeague verifies the league is reachable and returning JSON
// before any bulk fetching, failing fast with a credentials hint.
func (a *API) PreflightLeague() error {
	var resp models.LeagueResponse
	if err := a.client.Get("", map[string]string{"view": "mSettings"}, nil, &resp); err != nil {
		return fmt.Errorf(
			"espn league preflight failed, verify LEAGUE_ID/SEASON and cookie secrets "+
				"(SWID must include braces, ESPN_S2 must be current): %w", err)
	}
	return nil
}

func (a *API) GetLeagueMetadata() (*models.LeagueMetadata, error) {
	var resp models.LeagueResponse
	if err := a.client.Get("", map[string]string{"view": "mSettings"}, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching league metadata: %w", err)
	}

	return &models.LeagueMetadata{
		LeagueID:             resp.ID,
		Name:                 resp.Settings.Name,
		CurrentWeek:          resp.Status.CurrentMatchupPeriod,
		CurrentScoringPeriod: resp.ScoringPeriodID,
		SeasonID:             resp.SeasonID,
		FirstWeek:            resp.Status.FirstScoringPeriod,
		LastWeek:             resp.Status.FinalScoringPeriod,
		IsActive:             resp.Status.IsActive,
		LastUpdated:          time.Now(),
	}, nil
}

// GetLeagueRules maps the league's lineupSlotCounts (keyed by slot id)
// into canonical slot labels for the solver.
func (a *API) GetLeagueRules() (*models.LeagueRules, error) {
	var resp models.LeagueResponse
	if err := a.client.Get("", map[string]string{"view": "mSettings"}, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching league settings: %w", err)
	}
	return extractLeagueRules(&resp), nil
}

func extractLeagueRules(resp *models.LeagueResponse) *models.LeagueRules {
	slotCounts := map[string]int{}
	for rawID, count := range resp.Settings.RosterSettings.LineupSlotCounts {
		if count <= 0 {
			continue
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			slotCounts[lineup.CanonicalLabel(rawID)] = count
			continue
		}
		slotCounts[slotLabel(id)] = count
	}
	return &models.LeagueRules{
		SlotCounts:         slotCounts,
		RegularSeasonWeeks: resp.Settings.ScheduleSettings.MatchupPeriodCount,
	}
}

// GetTeamLabels builds {team_id: "Location Nickname (Owner)"} from the
// mTeam view. Label priority: location+nickname, then the single name
// field, then a generic fallback; the owner display name is appended when
// the member map resolves one.
func (a *API) GetTeamLabels() (map[int]string, error) {
	var resp models.LeagueResponse
	if err := a.client.Get("", map[string]string{"view": "mTeam,mSettings"}, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	return buildTeamLabelMap(resp.Teams, buildMemberDisplayMap(resp.Members)), nil
}

func buildMemberDisplayMap(members []models.Member) map[string]string {
	out := map[string]string{}
	for _, m := range members {
		id := m.ID
		if id == "" {
			id = m.MemberID
		}
		if id == "" {
			continue
		}
		switch {
		case strings.TrimSpace(m.DisplayName) != "":
			out[id] = strings.TrimSpace(m.DisplayName)
		case strings.TrimSpace(m.FirstName+m.LastName) != "":
			out[id] = strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
		case strings.TrimSpace(m.AlternateID) != "":
			out[id] = strings.TrimSpace(m.AlternateID)
		default:
			short := id
			if len(short) > 6 {
				short = short[:6]
			}
			out[id] = strings.ToUpper(short)
		}
	}
	return out
}

func buildTeamLabelMap(teams []models.Team, memberMap map[string]string) map[int]string {
	labels := map[int]string{}
	for _, t := range teams {
		id := t.ID
		if id == 0 {
			id = t.TeamID
		}
		if id == 0 {
			continue
		}

		base := teamBaseName(t, id)

		ownerID := t.PrimaryOwner
		if len(t.Owners) > 0 {
			ownerID = t.Owners[0]
		}
		if owner := memberMap[ownerID]; owner != "" {
			labels[id] = fmt.Sprintf("%s (%s)", base, owner)
		} else {
			labels[id] = base
		}
	}
	return labels
}

func teamBaseName(t models.Team, id int) string {
	location := strings.TrimSpace(t.Location)
	nickname := strings.TrimSpace(t.Nickname)
	switch {
	case location != "" || nickname != "":
		return strings.TrimSpace(location + " " + nickname)
	case strings.TrimSpace(t.Name) != "":
		return strings.TrimSpace(t.Name)
	default:
		return fmt.Sprintf("Team %d", id)
	}
}

// IsWeekComplete reports whether every matchup of the payload's scoring
// period has a decided winner.
func IsWeekComplete(resp *models.LeagueResponse) bool {
	if len(resp.Schedule) == 0 {
		return false
	}

	relevant := make([]models.MatchupScore, 0, len(resp.Schedule))
	for _, matchup := range resp.Schedule {
		if resp.ScoringPeriodID != 0 && matchup.MatchupPeriodID != 0 && matchup.MatchupPeriodID != resp.ScoringPeriodID {
			continue
		}
		relevant = append(relevant, matchup)
	}
	if len(relevant) == 0 {
		relevant = resp.Schedule
	}

	for _, matchup := range relevant {
		switch strings.ToUpper(strings.TrimSpace(matchup.Winner)) {
		case "HOME", "AWAY", "TIE":
		default:
			return false
		}
	}
	return true
}

func (a *API) fetchWeekMatchups(week int) (*models.LeagueResponse, error) {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mMatchup", "scoringPeriodId": strconv.Itoa(week)}
	if err := a.client.Get("", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching week %d matchups: %w", week, err)
	}
	return &resp, nil
}

func (a *API) fetchWeekRosters(week int) (*models.LeagueResponse, error) {
	var resp models.LeagueResponse
	params := map[string]string{"view": "mRoster", "scoringPeriodId": strconv.Itoa(week)}
	if err := a.client.Get("", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching week %d rosters: %w", week, err)
	}
	return &resp, nil
}

// LastCompletedWeek walks weeks upward from startWeek and returns the most
// recent week whose matchups are all decided. endWeek of 0 means use the
// league's regular-season length.
func (a *API) LastCompletedWeek(startWeek, endWeek int) (int, error) {
	var settings models.LeagueResponse
	if err := a.client.Get("", map[string]string{"view": "mSettings"}, nil, &settings); err != nil {
		return 0, fmt.Errorf("fetching settings: %w", err)
	}

	regularWeeks := settings.Settings.ScheduleSettings.MatchupPeriodCount
	upper := endWeek
	if upper == 0 {
		upper = regularWeeks
	}
	if upper == 0 {
		for _, candidate := range []int{
			settings.Status.LatestScoringPeriod,
			settings.Status.CurrentMatchupPeriod,
			settings.Status.FinalScoringPeriod,
		} {
			if candidate > upper {
				upper = candidate
			}
		}
	}
	if regularWeeks > 0 && upper > regularWeeks {
		upper = regularWeeks
	}
	if upper < startWeek {
		return startWeek - 1, nil
	}

	lastComplete := startWeek - 1
	for week := startWeek; week <= upper; week++ {
		matchups, err := a.fetchWeekMatchups(week)
		if err != nil {
			return 0, err
		}
		if !IsWeekComplete(matchups) {
			break
		}
		lastComplete = week
	}
	return lastComplete, nil
}

// FetchWeekScores returns one normalized score line per team for the week.
// All platform field probing happens here: downstream code only ever sees
// the RosterPlayer record. The actual total is summed from starter slot
// points (consistent with the solver's accounting), the bench total from
// bench-family slots, and the optimal from the lineup-derived slot plan.
func (a *API) FetchWeekScores(week int) ([]models.TeamWeekScore, error) {
	matchups, err := a.fetchWeekMatchups(week)
	if err != nil {
		return nil, err
	}
	rosters, err := a.fetchWeekRosters(week)
	if err != nil {
		return nil, err
	}

	scoringPeriod := matchups.ScoringPeriodID
	if scoringPeriod == 0 {
		scoringPeriod = week
	}

	var scores []models.TeamWeekScore
	for _, team := range rosters.Teams {
		teamID := team.ID
		if teamID == 0 {
			teamID = team.TeamID
		}
		if teamID == 0 {
			continue
		}

		roster := make([]models.RosterPlayer, 0, len(team.Roster.Entries))
		for _, entry := range team.Roster.Entries {
			roster = append(roster, normalizeRosterEntry(entry, scoringPeriod))
		}

		starters := lineup.StarterSlotLabels(roster)
		bench := lineup.BenchSlotLabels(roster)
		plan := lineup.BuildSlotPlanFromLineup(roster)

		scores = append(scores, models.TeamWeekScore{
			TeamID:        teamID,
			Owner:         teamBaseName(team, teamID),
			Week:          week,
			Points:        lineup.SumPointsForSlots(roster, starters),
			BenchPoints:   lineup.SumPointsForSlots(roster, bench),
			OptimalPoints: lineup.OptimalScore(roster, plan),
			Roster:        roster,
		})
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].TeamID < scores[j].TeamID })
	return scores, nil
}

// normalizeRosterEntry flattens one ESPN roster entry into the single
// player record the core consumes.
func normalizeRosterEntry(entry models.RosterEntry, scoringPeriod int) models.RosterPlayer {
	player := entry.PlayerPoolEntry.Player

	eligible := make([]string, 0, len(player.EligibleSlots))
	for _, slotID := range player.EligibleSlots {
		label := slotLabel(slotID)
		if label == "" || label == strconv.Itoa(slotID) || lineup.IsBenchLabel(label) {
			continue
		}
		eligible = append(eligible, label)
	}
	slot := slotLabel(entry.LineupSlotID)
	position := positionLabel(player.DefaultPositionID, slot)
	if len(eligible) == 0 && position != "" {
		eligible = []string{position}
	}

	return models.RosterPlayer{
		Name:          playerName(player),
		Points:        playerPoints(entry.PlayerPoolEntry, scoringPeriod),
		Slot:          slot,
		Position:      position,
		EligibleSlots: eligible,
	}
}

func playerName(player models.Player) string {
	for _, name := range []string{player.FullName, player.FirstName, player.LastName} {
		if name != "" {
			return name
		}
	}
	return ""
}

// playerPoints prefers actual scoring (statSourceId 0) over projections
// for the target scoring period, falling back to the applied total.
func playerPoints(entry models.PlayerPoolEntry, scoringPeriod int) float64 {
	stats := append(append([]models.Stat(nil), entry.Stats...), entry.Player.Stats...)

	var projected *float64
	for i := range stats {
		stat := stats[i]
		if stat.ScoringPeriodID != 0 && stat.ScoringPeriodID != scoringPeriod {
			continue
		}
		if stat.StatSourceID == 0 {
			return stat.AppliedTotal
		}
		if projected == nil {
			value := stat.AppliedTotal
			projected = &value
		}
	}
	if projected != nil {
		return *projected
	}
	return entry.AppliedStatTotal
}

// ParseWeeks expands a CLI week specifier: "auto" for every completed week
// of the regular season, a single week, an "A-B" range in either order, or
// a comma-separated list. Values outside the regular season are dropped.
func ParseWeeks(spec string, regularSeasonWeeks, lastCompleted int) ([]int, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "auto" {
		upper := lastCompleted
		if upper == 0 {
			upper = regularSeasonWeeks
		}
		if upper < 1 {
			upper = 1
		}
		if regularSeasonWeeks > 0 && upper > regularSeasonWeeks {
			upper = regularSeasonWeeks
		}
		weeks := make([]int, 0, upper)
		for week := 1; week <= upper; week++ {
			weeks = append(weeks, week)
		}
		return weeks, nil
	}

	validate := func(values []int) ([]int, error) {
		seen := map[int]bool{}
		var weeks []int
		for _, week := range values {
			if week < 1 || (regularSeasonWeeks > 0 && week > regularSeasonWeeks) || seen[week] {
				continue
			}
			seen[week] = true
			weeks = append(weeks, week)
		}
		if len(weeks) == 0 {
			return nil, fmt.Errorf("no valid weeks parsed from %q", spec)
		}
		sort.Ints(weeks)
		return weeks, nil
	}

	if strings.Contains(spec, ",") {
		var values []int
		for _, part := range strings.Split(spec, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			week, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid week %q: %w", part, err)
			}
			values = append(values, week)
		}
		return validate(values)
	}

	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid week range %q: %w", spec, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid week range %q: %w", spec, err)
		}
		if start > end {
			start, end = end, start
		}
		var values []int
		for week := start; week <= end; week++ {
			values = append(values, week)
		}
		return validate(values)
	}

	week, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid week spec %q: %w", spec, err)
	}
	return validate([]int{week})
}
