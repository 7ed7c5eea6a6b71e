package app

import (
	"fmt"
	"strings"

	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/stage"
)

// PendingStageText is shown when no reference entry matched.
const PendingStageText = "Stage information pending. Log a milestone with /milestone and I will place you on the timeline."

// FormatStage renders a stage view as a plain-text bot message.
func FormatStage(view *StageView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, cycle day %d\n\n", view.Cycle.Type.Label(), view.CycleDay)

	res := view.Result
	if res == nil {
		b.WriteString(PendingStageText)
	} else {
		fmt.Fprintf(&b, "Stage: %s\n", res.Stage.Name)
		if d := strings.TrimSpace(res.Stage.Description); d != "" {
			b.WriteString(d)
			b.WriteString("\n")
		}
		if d := strings.TrimSpace(res.Stage.Details); d != "" {
			b.WriteString(d)
			b.WriteString("\n")
		}
		switch res.Source {
		case stage.SourceFallbackMilestone:
			if fm := res.FallbackMilestone; fm != nil {
				fmt.Fprintf(&b, "\nBased on your %s %s.\n", fm.Title, daysAgoText(fm.DaysAgo))
			}
		case stage.SourceDayBased:
			b.WriteString("\nEstimated from your cycle day.\n")
		}
		if len(res.Tips) > 0 {
			b.WriteString("\nTips:\n")
			for _, tip := range res.Tips {
				fmt.Fprintf(&b, "- %s\n", tip)
			}
		}
	}

	if view.Next != nil {
		fmt.Fprintf(&b, "\nNext: %s (%s)", milestone.FormatTitle(view.Next.Type), strings.ToLower(view.NextWhen))
	}
	return strings.TrimRight(b.String(), "\n")
}

func daysAgoText(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// FormatTimeline renders the timeline as one line per milestone.
func FormatTimeline(view *TimelineView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, cycle day %d\n", view.Cycle.Type.Label(), view.CycleDay)
	for _, it := range view.Items {
		fmt.Fprintf(&b, "\n%s %s: %s (%s)", statusMark(it.Status), it.Title, it.When, it.Status)
		if it.Notes != "" {
			fmt.Fprintf(&b, "\n    %s", it.Notes)
		}
	}
	return b.String()
}

func statusMark(display string) string {
	switch display {
	case milestone.StatusCompleted.Display():
		return "[x]"
	case milestone.StatusInProgress.Display():
		return "[>]"
	case milestone.StatusCancelled.Display():
		return "[-]"
	default:
		return "[ ]"
	}
}
