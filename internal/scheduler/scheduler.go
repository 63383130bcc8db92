package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"

	"github.com/kthorson/sidepotbot/internal/config"
	"github.com/kthorson/sidepotbot/internal/service"
)

// Scheduler posts the weekly side pot reports after Monday night games have
// settled. The default is Tuesday 07:30 league time; a cron expression in
// the league file overrides it.
type Scheduler struct {
	s              gocron.Scheduler
	sidePotService *service.SidePotService
	schedule       config.Schedule
	sendMessage    func(string) error
}

func NewScheduler(sidePotService *service.SidePotService, schedule config.Schedule, sendMessage func(string) error) (*Scheduler, error) {
	locationName := schedule.Location
	if locationName == "" {
		locationName = "America/Chicago"
	}
	location, err := time.LoadLocation(locationName)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", locationName, err)
	}

	if schedule.Cron != "" {
		if _, err := cron.ParseStandard(schedule.Cron); err != nil {
			return nil, fmt.Errorf("invalid schedule cron %q: %w", schedule.Cron, err)
		}
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:              s,
		sidePotService: sidePotService,
		schedule:       schedule,
		sendMessage:    sendMessage,
	}, nil
}

func (s *Scheduler) Start() error {
	definition := gocron.WeeklyJob(1, gocron.NewWeekdays(time.Tuesday), gocron.NewAtTimes(gocron.NewAtTime(7, 30, 0)))
	if s.schedule.Cron != "" {
		definition = gocron.CronJob(s.schedule.Cron, false)
	}

	_, err := s.s.NewJob(
		definition,
		gocron.NewTask(s.runWeeklyReports),
	)
	if err != nil {
		return fmt.Errorf("failed to create weekly reports job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) runWeeklyReports() {
	if err := s.sidePotService.RunReports(context.Background(), "all", "auto", false); err != nil {
		slog.Error("Failed to run weekly reports", "error", err)
	}
	if s.sendMessage == nil {
		return
	}

	for _, build := range []func(string) (string, error){
		s.sidePotService.GetPIRReport,
		s.sidePotService.GetEfficiencyReport,
		s.sidePotService.GetSurvivorReport,
	} {
		report, err := build("auto")
		if err != nil {
			slog.Error("Failed to build weekly report", "error", err)
			continue
		}
		if err := s.sendMessage(report); err != nil {
			slog.Error("Failed to send weekly report", "error", err)
		}
	}
}
