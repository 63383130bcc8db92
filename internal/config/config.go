package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramBot TelegramBot
	ESPNAPI     ESPNAPI
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// TelegramBot is optional; the interactive bot is disabled when no token
// is configured.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

type ESPNAPI struct {
	LeagueID   int    `envconfig:"LEAGUE_ID"`
	Season     int    `envconfig:"SEASON"`
	SWID       string `envconfig:"SWID"`
	ESPNS2     string `envconfig:"ESPN_S2"`
	UseAltHost bool   `envconfig:"ESPN_USE_ALT_HOST"`
}

func New() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// League is the per-league configuration file. Environment variables take
// precedence over its league/season/credential values.
type League struct {
	LeagueID           int               `yaml:"league_id"`
	Season             int               `yaml:"season"`
	ESPNS2             string            `yaml:"espn_s2"`
	SWID               string            `yaml:"swid"`
	PIRTarget          float64           `yaml:"pir_target"`
	SurvivorStartWeek  int               `yaml:"survivor_start_week"`
	RegularSeasonWeeks int               `yaml:"regular_season_weeks"`
	Tiebreaks          Tiebreaks         `yaml:"tiebreaks"`
	Webhooks           map[string]string `yaml:"webhooks"`
	Schedule           Schedule          `yaml:"schedule"`
}

type Tiebreaks struct {
	PIR        []string `yaml:"pir"`
	Efficiency []string `yaml:"efficiency"`
	Survivor   []string `yaml:"survivor"`
}

// Schedule controls when the weekly report posts. Cron, when set, is a
// standard five-field expression overriding the default weekly job.
type Schedule struct {
	Location string `yaml:"location"`
	Cron     string `yaml:"cron"`
}

func LoadLeague(path string) (*League, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading league config: %w", err)
	}
	league := &League{
		PIRTarget:         150.0,
		SurvivorStartWeek: 1,
	}
	if err := yaml.Unmarshal(raw, league); err != nil {
		return nil, fmt.Errorf("parsing league config: %w", err)
	}
	return league, nil
}

// Resolve fills unset credential and identity fields from the league file.
// Values already present from the environment win.
func (c *Config) Resolve(league *League) error {
	if c.ESPNAPI.LeagueID == 0 {
		c.ESPNAPI.LeagueID = league.LeagueID
	}
	if c.ESPNAPI.Season == 0 {
		c.ESPNAPI.Season = league.Season
	}
	if c.ESPNAPI.ESPNS2 == "" {
		c.ESPNAPI.ESPNS2 = league.ESPNS2
	}
	if c.ESPNAPI.SWID == "" {
		c.ESPNAPI.SWID = league.SWID
	}
	if c.ESPNAPI.LeagueID == 0 {
		return fmt.Errorf("missing configuration for LEAGUE_ID")
	}
	if c.ESPNAPI.Season == 0 {
		return fmt.Errorf("missing configuration for SEASON")
	}
	return nil
}

// MaskSecret keeps only the last few characters of a credential for logs.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	tail := value
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "*..." + tail
}
