package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kthorson/sidepotbot/internal/service"
)

type Handler struct {
	sidePotService *service.SidePotService
}

func NewHandler(sidePotService *service.SidePotService) *Handler {
	return &Handler{sidePotService: sidePotService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to SidePotBot! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n" +
			"/pir [weeks] - Price Is Right standings\n" +
			"/efficiency [weeks] - Season lineup efficiency\n" +
			"/survivor [weeks] - Survivor pool eliminations\n" +
			"/team <team> - Team's latest week vs its optimal lineup\n" +
			"/week - Current league week\n" +
			"/report [weeks] - Run all side pot reports\n\n" +
			"[weeks] accepts a single week, a range like 1-5, a list like 1,3,5, or auto."
	case "pir":
		h.handlePIR(&msg, args)
	case "efficiency":
		h.handleEfficiency(&msg, args)
	case "survivor":
		h.handleSurvivor(&msg, args)
	case "team":
		h.handleTeam(&msg, args)
	case "week":
		h.handleWeek(&msg)
	case "report":
		h.handleReport(ctx, &msg, args)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handlePIR(msg *tgbotapi.MessageConfig, args string) {
	report, err := h.sidePotService.GetPIRReport(args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error building Price Is Right report: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleEfficiency(msg *tgbotapi.MessageConfig, args string) {
	report, err := h.sidePotService.GetEfficiencyReport(args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error building efficiency report: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleSurvivor(msg *tgbotapi.MessageConfig, args string) {
	report, err := h.sidePotService.GetSurvivorReport(args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error building survivor report: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleTeam(msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a team name. Usage: /team <team name>"
		return
	}
	report, err := h.sidePotService.GetTeamLineup(args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error getting team lineup: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleWeek(msg *tgbotapi.MessageConfig) {
	week, err := h.sidePotService.GetCurrentWeek()
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching current week: %v", err)
	} else {
		msg.Text = fmt.Sprintf("Current league week: %d", week)
	}
}

func (h *Handler) handleReport(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	if err := h.sidePotService.RunReports(ctx, "all", args, false); err != nil {
		msg.Text = fmt.Sprintf("Error running reports: %v", err)
		return
	}
	msg.Text = "All side pot reports posted."
}
