package telegram

import (
	"context"
	"fmt"

	"ivf_stage_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterMilestoneHandlers wires /milestone, /note and the inline buttons
// sent with /stage.
func RegisterMilestoneHandlers(ctx context.Context, b *telebot.Bot, tracking *app.TrackingService, stages *app.StageService, baseLogger *logrus.Entry) {
	b.Handle("/milestone", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/milestone", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		mt, status, date, err := parseMilestoneArgs(c.Args())
		if err != nil {
			return c.Send(usageMilestone)
		}

		m, promoted, err := tracking.RecordMilestone(ctx, c.Sender().ID, mt, status, date)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to record milestone")
			}
			return c.Send(reply)
		}
		verb := "updated"
		if promoted {
			verb = "recorded"
		}
		return c.Send(fmt.Sprintf("%s %s: %s.", m.DisplayTitle(), verb, m.ParsedStatus().Display()))
	})

	b.Handle("/note", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/note", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		mt, text, err := parseNoteArgs(c.Args())
		if err != nil {
			return c.Send(usageNote)
		}
		m, err := tracking.UpdateMilestoneNotes(ctx, c.Sender().ID, mt, text)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to update milestone notes")
			}
			return c.Send(reply)
		}
		return c.Send(fmt.Sprintf("Note saved for %s.", m.DisplayTitle()))
	})

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "callback", "sender_id": c.Sender().ID, "data": data})

		mt, status, ok := parseCallbackData(data)
		if !ok {
			logCtx.Warn("Unhandled callback data")
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		m, _, err := tracking.RecordMilestone(ctx, c.Sender().ID, mt, string(status), nil)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to record milestone from button")
			}
			return c.Respond(&telebot.CallbackResponse{Text: reply})
		}
		if err := c.Respond(&telebot.CallbackResponse{Text: fmt.Sprintf("%s: %s", m.DisplayTitle(), m.ParsedStatus().Display())}); err != nil {
			logCtx.WithError(err).Warn("Failed to answer callback")
		}

		// Refresh the stage message in place so the buttons move on to the next milestone.
		view, err := stages.CurrentStage(ctx, c.Sender().ID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to resolve stage after button press")
			return nil
		}
		if markup := stageKeyboard(view); markup != nil {
			return c.Edit(app.FormatStage(view), markup)
		}
		return c.Edit(app.FormatStage(view))
	})
}
