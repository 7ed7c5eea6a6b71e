package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ivf_stage_bot/internal/app"
	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"

	"gopkg.in/telebot.v3"
)

// Inline button payloads: ms_start_<milestone type>, ms_done_<milestone type>.
const (
	callbackStartPrefix = "ms_start_"
	callbackDonePrefix  = "ms_done_"
)

const (
	usageStartCycle = "Usage: /startcycle <fresh-ivf|ivf-frozen|iui|egg-freezing> <YYYY-MM-DD>"
	usageEndCycle   = "Usage: /endcycle <completed|cancelled>"
	usageMilestone  = "Usage: /milestone <type> <pending|in-progress|completed|cancelled> [YYYY-MM-DD]"
	usageNote       = "Usage: /note <type> <text>"
)

var errUsage = errors.New("invalid command arguments")

func parseStartCycleArgs(args []string) (cycle.Type, time.Time, error) {
	if len(args) != 2 {
		return "", time.Time{}, errUsage
	}
	ct, err := cycle.ParseType(args[0])
	if err != nil {
		return "", time.Time{}, err
	}
	start, err := time.Parse(time.DateOnly, args[1])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("start date %q is not YYYY-MM-DD", args[1])
	}
	return ct, start, nil
}

func parseEndCycleArgs(args []string) (cycle.Status, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	return cycle.ParseStatus(args[0])
}

// parseMilestoneArgs reads "<type> <status words...> [date]". The status may
// span several words ("in progress"); a trailing YYYY-MM-DD is the date.
func parseMilestoneArgs(args []string) (string, string, *time.Time, error) {
	if len(args) < 2 {
		return "", "", nil, errUsage
	}
	rest := args[1:]
	var date *time.Time
	if len(rest) > 1 {
		if d, err := time.Parse(time.DateOnly, rest[len(rest)-1]); err == nil {
			date = &d
			rest = rest[:len(rest)-1]
		}
	}
	return args[0], strings.Join(rest, " "), date, nil
}

func parseNoteArgs(args []string) (string, string, error) {
	if len(args) < 2 {
		return "", "", errUsage
	}
	return args[0], strings.Join(args[1:], " "), nil
}

// parseCallbackData maps an inline button payload to a milestone type and the
// status it sets.
func parseCallbackData(data string) (string, milestone.Status, bool) {
	data = strings.TrimPrefix(data, "\f")
	switch {
	case strings.HasPrefix(data, callbackStartPrefix):
		mt := strings.TrimPrefix(data, callbackStartPrefix)
		return mt, milestone.StatusInProgress, mt != ""
	case strings.HasPrefix(data, callbackDonePrefix):
		mt := strings.TrimPrefix(data, callbackDonePrefix)
		return mt, milestone.StatusCompleted, mt != ""
	default:
		return "", "", false
	}
}

// stageKeyboard offers to mark the next expected milestone started or done.
func stageKeyboard(view *app.StageView) *telebot.ReplyMarkup {
	if view == nil || view.Next == nil {
		return nil
	}
	title := milestone.FormatTitle(view.Next.Type)
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{{
		{Text: "Started: " + title, Data: callbackStartPrefix + view.Next.Type},
		{Text: "Done: " + title, Data: callbackDonePrefix + view.Next.Type},
	}}
	return markup
}

// errorReply turns a service error into a message for the patient. The bool is
// false for errors the patient cannot fix, which the caller logs as failures.
func errorReply(err error) (string, bool) {
	switch {
	case errors.Is(err, app.ErrNotRegistered):
		return "I don't know you yet. Send /start first.", true
	case errors.Is(err, app.ErrNoActiveCycle):
		return "You have no active cycle. " + usageStartCycle, true
	case errors.Is(err, app.ErrActiveCycleExists):
		return "You already have an active cycle. Close it first. " + usageEndCycle, true
	case errors.Is(err, app.ErrStartDateInFuture):
		return "The start date cannot be in the future.", true
	case errors.Is(err, app.ErrInvalidCloseStatus):
		return usageEndCycle, true
	case errors.Is(err, app.ErrUnknownStatus):
		return "Unknown status. Use pending, in-progress, completed or cancelled.", true
	case errors.Is(err, app.ErrEmptyMilestoneType):
		return usageMilestone, true
	case errors.Is(err, app.ErrMilestoneNotRecorded):
		return "Record that milestone with /milestone before adding a note.", true
	case errors.Is(err, app.ErrAdminNotAuthorized):
		return "You are not allowed to run this command.", true
	default:
		return "Something went wrong. Please try again later.", false
	}
}
