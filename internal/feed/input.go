package feed

import (
	"strings"

	"github.com/threadfeed/threadfeed/internal/conversation"
)

// InputSelection is the queued input request shown for the active thread.
type InputSelection struct {
	Request conversation.InputRequest
	// Position is 1-based among the requests queued for the thread.
	Position int
	Total    int
}

// SelectInputRequest returns the first request for the active thread. The
// workspace must also match when both the request and the active view name
// one.
func SelectInputRequest(reqs []conversation.InputRequest, threadID, workspaceID string) (InputSelection, bool) {
	var sel InputSelection
	found := false
	for _, r := range reqs {
		if r.ThreadID != threadID {
			continue
		}
		if r.WorkspaceID != "" && workspaceID != "" && r.WorkspaceID != workspaceID {
			continue
		}
		if !found {
			sel.Request = r
			sel.Position = 1
			found = true
		}
		sel.Total++
	}
	return sel, found
}

// Answer is the user's response to one question. Option is the selected
// option index, or -1 when none was picked.
type Answer struct {
	Option int
	Note   string
}

// NoOption is the Answer.Option value for "nothing selected".
const NoOption = -1

const userNotePrefix = "user note: "

// BuildAnswers assembles the answer map sent back to the agent. Questions
// without an id are omitted; a question with an id but no answer maps to an
// empty list.
func BuildAnswers(req conversation.InputRequest, answers map[string]Answer) map[string][]string {
	out := make(map[string][]string)
	for _, q := range req.Questions {
		if q.ID == "" {
			continue
		}
		list := []string{}
		a, ok := answers[q.ID]
		if !ok {
			out[q.ID] = list
			continue
		}

		chose := false
		if a.Option >= 0 && a.Option < len(q.Options) {
			opt := q.Options[a.Option]
			label := strings.TrimSpace(opt.Label)
			if label == "" {
				label = strings.TrimSpace(opt.Description)
			}
			if label != "" {
				list = append(list, label)
				chose = true
			}
		}

		if note := strings.TrimSpace(a.Note); note != "" {
			if chose {
				list = append(list, userNotePrefix+note)
			} else {
				list = append(list, note)
			}
		}
		out[q.ID] = list
	}
	return out
}
