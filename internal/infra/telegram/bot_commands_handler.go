// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ivf_stage_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const patientHelp = "I follow your treatment cycle and tell you where you are in it.\n\n" +
	"/startcycle <type> <YYYY-MM-DD> - start tracking a cycle (fresh-ivf, ivf-frozen, iui, egg-freezing)\n" +
	"/stage - where am I now?\n" +
	"/timeline - expected and recorded milestones\n" +
	"/milestone <type> <status> [YYYY-MM-DD] - record a milestone\n" +
	"/note <type> <text> - add a note to a recorded milestone\n" +
	"/endcycle <completed|cancelled> - close the active cycle\n" +
	"/help - show this message"

const adminHelp = "\n\nAdmin:\n" +
	"/reload_reference - reload stage reference data\n" +
	"/stats - active cycles per type"

// RegisterBotCommands wires the patient account and cycle commands.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	tracking *app.TrackingService,
	admin *app.AdminService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/start", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		p, created, err := tracking.RegisterPatient(ctx, c.Sender().ID, c.Sender().FirstName, c.Sender().LastName)
		if err != nil {
			logCtx.WithError(err).Error("Failed to register patient")
			return c.Send("Something went wrong while setting you up. Please try again later.")
		}
		if created {
			logCtx.WithField("patient_id", p.ID).Info("New patient registered")
			return c.Send(fmt.Sprintf("Welcome, %s! Start tracking with %s", p.FirstName, strings.TrimPrefix(usageStartCycle, "Usage: ")))
		}
		return c.Send(fmt.Sprintf("Welcome back, %s! Use /stage to see where you are.", p.FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{"handler": "/help", "sender_id": c.Sender().ID}).Info("Command received")
		if admin.IsAdmin(c.Sender().ID) {
			return c.Send(patientHelp + adminHelp)
		}
		return c.Send(patientHelp)
	})

	b.Handle("/startcycle", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/startcycle", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		cycleType, start, err := parseStartCycleArgs(c.Args())
		if err != nil {
			logCtx.WithError(err).Warn("Invalid command format")
			if errors.Is(err, errUsage) {
				return c.Send(usageStartCycle)
			}
			return c.Send(fmt.Sprintf("%v\n%s", err, usageStartCycle))
		}

		cy, err := tracking.StartCycle(ctx, c.Sender().ID, cycleType, start)
		if err != nil {
			reply, expected := errorReply(err)
			if expected {
				logCtx.WithError(err).Warn("Cycle not started")
			} else {
				logCtx.WithError(err).Error("Failed to start cycle")
			}
			return c.Send(reply)
		}
		logCtx.WithField("cycle_id", cy.ID).Info("Cycle started")
		return c.Send(fmt.Sprintf("%s cycle started on %s. Use /stage to see where you are.",
			cy.Type.Label(), cy.StartDate.Format(time.DateOnly)))
	})

	b.Handle("/endcycle", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/endcycle", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		status, err := parseEndCycleArgs(c.Args())
		if err != nil {
			logCtx.WithError(err).Warn("Invalid command format")
			return c.Send(usageEndCycle)
		}

		cy, err := tracking.CloseCycle(ctx, c.Sender().ID, status)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to close cycle")
			}
			return c.Send(reply)
		}
		return c.Send(fmt.Sprintf("Your %s cycle is now %s.", cy.Type.Label(), cy.Status))
	})
}
