package telegram

import (
	"context"

	"ivf_stage_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterStageHandlers wires /stage and /timeline.
func RegisterStageHandlers(ctx context.Context, b *telebot.Bot, stages *app.StageService, baseLogger *logrus.Entry) {
	b.Handle("/stage", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/stage", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		view, err := stages.CurrentStage(ctx, c.Sender().ID)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to resolve stage")
			}
			return c.Send(reply)
		}

		if markup := stageKeyboard(view); markup != nil {
			return c.Send(app.FormatStage(view), markup)
		}
		return c.Send(app.FormatStage(view))
	})

	b.Handle("/timeline", func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "/timeline", "sender_id": c.Sender().ID})
		logCtx.Info("Command received")

		view, err := stages.Timeline(ctx, c.Sender().ID)
		if err != nil {
			reply, expected := errorReply(err)
			if !expected {
				logCtx.WithError(err).Error("Failed to build timeline")
			}
			return c.Send(reply)
		}
		return c.Send(app.FormatTimeline(view))
	})
}
