package conversation

import (
	"strings"
	"unicode"
)

// Status is a normalized execution status.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCanceled
)

// String returns a lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// NormalizeStatus maps free-text status strings to a Status. Matching ignores
// case, spaces, dashes and underscores, so "in_progress", "In Progress" and
// "inProgress" are the same.
func NormalizeStatus(status string) Status {
	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, status)

	switch key {
	case "pending", "queued", "waiting", "started":
		return StatusPending
	case "inprogress", "running", "active", "exploring", "streaming":
		return StatusRunning
	case "completed", "complete", "success", "succeeded", "done", "ok", "explored":
		return StatusCompleted
	case "failed", "failure", "error", "errored", "declined", "rejected":
		return StatusFailed
	case "canceled", "cancelled", "aborted", "interrupted":
		return StatusCanceled
	default:
		return StatusUnknown
	}
}
