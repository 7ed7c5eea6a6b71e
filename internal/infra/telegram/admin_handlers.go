package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ivf_stage_bot/internal/app"
	"ivf_stage_bot/internal/domain/cycle"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, admin service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/reload_reference", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reload_reference",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		n, err := adminService.ReloadReference(ctx, c.Sender().ID)
		if err != nil {
			if errors.Is(err, app.ErrAdminNotAuthorized) {
				return c.Send("You are not allowed to run this command.")
			}
			handlerLogger.WithError(err).Error("Failed to reload reference data")
			return c.Send(fmt.Sprintf("Reload failed, still serving %d entries: %v", n, err))
		}
		handlerLogger.WithField("entries", n).Info("Reference data reloaded")
		return c.Send(fmt.Sprintf("Reference data reloaded: %d entries.", n))
	})

	b.Handle("/stats", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/stats",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		counts, err := adminService.CountActiveCycles(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to count active cycles")
			return c.Send("Failed to count active cycles.")
		}
		return c.Send(formatStats(counts))
	})
}

func formatStats(counts map[cycle.Type]int) string {
	if len(counts) == 0 {
		return "No active cycles."
	}
	types := make([]cycle.Type, 0, len(counts))
	total := 0
	for t, n := range counts {
		types = append(types, t)
		total += n
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "Active cycles: %d", total)
	for _, t := range types {
		fmt.Fprintf(&b, "\n%s: %d", t.Label(), counts[t])
	}
	return b.String()
}
