package feed

import (
	"fmt"
	"time"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

const defaultWorkingLabel = "Working"

// Working is the trailing activity indicator.
type Working struct {
	Active  bool
	Label   string
	Elapsed time.Duration
}

// DeriveWorking computes the trailing indicator. The label comes from the
// most recent reasoning item of the current turn, including reasoning items
// hidden for having no body.
func DeriveWorking(items []conversation.Item, cache *ReasoningCache, thinking, streaming bool, startedAt time.Time, now time.Time) Working {
	w := Working{Active: thinking || streaming, Label: defaultWorkingLabel}
	if !w.Active {
		return w
	}
	for i := len(items) - 1; i >= 0; i-- {
		if conversation.IsUserMessage(items[i]) {
			break
		}
		if r, ok := items[i].(*conversation.Reasoning); ok {
			if label := cache.Parse(r).WorkingLabel; label != "" {
				w.Label = label
			}
			break
		}
	}
	if !startedAt.IsZero() && now.After(startedAt) {
		w.Elapsed = now.Sub(startedAt)
	}
	return w
}

// FormatElapsed renders a duration as "45s", "2m 05s" or "1h 02m".
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

// WorkedFor returns the idle trailer for the last finished turn.
func WorkedFor(d time.Duration) string {
	return "Worked for " + FormatElapsed(d)
}
