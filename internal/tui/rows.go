package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/feed"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

const (
	toolOutputLines  = 10
	diffPreviewLines = 12
	exploreTail      = 3
)

// rowContext is the renderer-owned state a row render depends on.
type rowContext struct {
	width     int
	expand    *feed.ExpandState
	collapsed map[string]bool
	rules     feed.CollapseRules
	reasoning *feed.ReasoningCache
	md        *markdownRenderer
}

// rowRenderer renders one item. It handles every item kind; adding a kind
// to conversation.Visitor breaks the build here until it is rendered.
type rowRenderer struct {
	ctx   *rowContext
	width int
}

var _ conversation.Visitor[string] = rowRenderer{}

func (c *rowContext) renderer() rowRenderer {
	return rowRenderer{ctx: c, width: c.width}
}

func (r rowRenderer) indented(n int) rowRenderer {
	r.width -= n
	if r.width < 10 {
		r.width = 10
	}
	return r
}

// renderEntry renders a feed entry: a single item or a tool group.
func (c *rowContext) renderEntry(e feed.Entry) string {
	if e.Group != nil {
		return c.renderGroup(e.Key(), e.Group)
	}
	return conversation.Visit(e.Item, c.renderer())
}

func (r rowRenderer) messageCollapsed(id string) bool {
	return r.ctx.expand.MessageCollapsed(id, r.ctx.collapsed)
}

// collapsible reports whether a message has a collapsed form at all.
func (r rowRenderer) collapsible(id string) bool {
	return r.ctx.collapsed[id] || r.ctx.expand.Overridden(id)
}

func (r rowRenderer) Message(m *conversation.Message) string {
	s := theme.Current().S()

	text := strings.TrimRight(m.Text, "\n")
	collapsed := r.messageCollapsed(m.ID)
	if collapsed {
		text, _ = feed.Preview(text, r.ctx.rules.PreviewChars)
	}

	var b strings.Builder
	if m.Role == conversation.RoleUser {
		b.WriteString(s.UserBubble.Render(wrapText(text, r.width-2)))
	} else {
		b.WriteString(s.AssistantBorder.Render(r.ctx.md.render(text, r.width-2)))
	}

	if n := len(m.Images); n > 0 {
		b.WriteString("\n" + s.MessageMeta.Render(plural(n, "image", "images")+" attached"))
	}
	switch {
	case collapsed:
		b.WriteString("\n" + s.ExpandHint.Render("▸ show full message"))
	case r.collapsible(m.ID):
		b.WriteString("\n" + s.ExpandHint.Render("▾ collapse message"))
	}
	if m.Role == conversation.RoleAssistant && m.Model != "" {
		meta := m.Model
		if m.ContextWindow > 0 {
			meta += fmt.Sprintf(" · %dk context", m.ContextWindow/1000)
		}
		b.WriteString("\n" + s.MessageMeta.Render(meta))
	}
	return b.String()
}

func (r rowRenderer) Reasoning(item *conversation.Reasoning) string {
	s := theme.Current().S()
	view := r.ctx.reasoning.Parse(item)
	expanded := r.ctx.expand.IsExpanded(item.ID)

	head := s.ReasoningTitle.Render(disclosure(expanded) + " " + truncateLine(view.Title, r.width-2))
	if !expanded || !view.HasBody {
		return head
	}
	return head + "\n" + s.ReasoningBody.Render(wrapText(view.Body, r.width-2))
}

func (r rowRenderer) Tool(t *conversation.Tool) string {
	s := theme.Current().S()
	status := conversation.NormalizeStatus(t.Status)
	expanded := r.ctx.expand.IsExpanded(t.ID)

	header := toolIcon(status) + " " + s.ToolTitle.Render(toolTitle(t))
	if detail := strings.TrimSpace(t.Detail); detail != "" && t.ToolType != conversation.ToolPlan {
		header += " " + s.ToolDetail.Render(firstLine(detail))
	}
	if d := t.Duration(); d > 0 {
		header += " " + s.ToolDuration.Render(formatDuration(d))
	}
	header = truncateLine(header, r.width)

	var body string
	switch t.ToolType {
	case conversation.ToolFileChange:
		body = r.fileChanges(t.Changes, expanded)
	case conversation.ToolPlan:
		body = r.planOutput(t.Output, expanded)
	default:
		body = r.toolOutput(t.Output, status, expanded)
	}
	if body == "" {
		return header
	}
	return header + "\n" + body
}

func (r rowRenderer) toolOutput(output string, status conversation.Status, expanded bool) string {
	s := theme.Current().S()
	output = strings.TrimRight(output, "\n")
	if strings.TrimSpace(output) == "" {
		return ""
	}

	lines := strings.Split(output, "\n")
	hidden := 0
	if status != conversation.StatusFailed && !expanded && len(lines) > toolOutputLines {
		hidden = len(lines) - toolOutputLines
		lines = lines[:toolOutputLines]
	}

	style := s.ToolOutput
	if status == conversation.StatusFailed {
		style = s.ToolError
	}
	width := r.width - 2
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		out = append(out, style.Render(truncateLine(line, width)))
	}
	if hidden > 0 {
		out = append(out, s.ToolTruncation.Render(fmt.Sprintf("…(%d more lines)", hidden)))
	}
	return strings.Join(out, "\n")
}

func (r rowRenderer) fileChanges(changes []conversation.FileChange, expanded bool) string {
	s := theme.Current().S()
	var out []string
	for _, fc := range changes {
		diff := changeDiff(fc)
		added, removed := diffStat(diff)
		line := "  " + s.DiffTitle.Render(fc.Path)
		if fc.Kind != "" {
			line += " " + s.ToolDetail.Render(fc.Kind)
		}
		line += " " + s.ToolIconSuccess.Render(fmt.Sprintf("+%d", added)) +
			" " + s.ToolIconError.Render(fmt.Sprintf("-%d", removed))
		out = append(out, line)
		if expanded && diff != "" {
			out = append(out, r.codeBlock(highlightDiff(diff)))
		}
	}
	return strings.Join(out, "\n")
}

func (r rowRenderer) planOutput(output string, expanded bool) string {
	s := theme.Current().S()
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	if !expanded {
		return s.ToolTruncation.Render(truncateLine(firstLine(output), r.width-2))
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(r.ctx.md.render(output, r.width-2))
}

func (r rowRenderer) codeBlock(highlighted string) string {
	s := theme.Current().S()
	width := r.width - 2
	lines := strings.Split(highlighted, "\n")
	for i, line := range lines {
		lines[i] = s.CodeBlock.Render(truncateLine(line, width))
	}
	return strings.Join(lines, "\n")
}

func (r rowRenderer) Explore(e *conversation.Explore) string {
	s := theme.Current().S()
	status := conversation.NormalizeStatus(e.Status)
	expanded := r.ctx.expand.IsExpanded(e.ID)

	title := "Explored"
	if status == conversation.StatusRunning || status == conversation.StatusPending {
		title = "Exploring"
	}
	header := toolIcon(status) + " " + s.ExploreTitle.Render(title) +
		" " + s.ToolDetail.Render(plural(len(e.Entries), "step", "steps"))

	entries := e.Entries
	var out []string
	out = append(out, truncateLine(header, r.width))
	if !expanded && len(entries) > exploreTail {
		out = append(out, s.ExploreEntry.Render(fmt.Sprintf("… %d earlier", len(entries)-exploreTail)))
		entries = entries[len(entries)-exploreTail:]
	}
	for _, en := range entries {
		line := en.Kind + " " + en.Label
		if en.Detail != "" {
			line += " · " + en.Detail
		}
		out = append(out, s.ExploreEntry.Render(truncateLine(strings.TrimSpace(line), r.width-4)))
	}
	return strings.Join(out, "\n")
}

func (r rowRenderer) Diff(d *conversation.Diff) string {
	s := theme.Current().S()
	expanded := r.ctx.expand.IsExpanded(d.ID)

	title := d.Title
	if strings.TrimSpace(title) == "" {
		title = "Diff"
	}
	diff := strings.TrimRight(d.Diff, "\n")
	added, removed := diffStat(diff)
	header := s.DiffTitle.Render(title) + " " +
		s.ToolIconSuccess.Render(fmt.Sprintf("+%d", added)) + " " +
		s.ToolIconError.Render(fmt.Sprintf("-%d", removed))
	if diff == "" {
		return header
	}

	lines := strings.Split(diff, "\n")
	hidden := 0
	if !expanded && len(lines) > diffPreviewLines {
		hidden = len(lines) - diffPreviewLines
		lines = lines[:diffPreviewLines]
	}
	out := header + "\n" + r.codeBlock(highlightDiff(strings.Join(lines, "\n")))
	if hidden > 0 {
		out += "\n" + s.ToolTruncation.Render(fmt.Sprintf("…(%d more lines)", hidden))
	}
	return out
}

func (r rowRenderer) Review(v *conversation.Review) string {
	s := theme.Current().S()
	marker := "◆ Review started"
	if v.State == conversation.ReviewCompleted {
		marker = "✓ Review completed"
	}
	out := s.ReviewMarker.Render(marker)
	if text := strings.TrimSpace(v.Text); text != "" {
		out += "\n" + r.ctx.md.render(text, r.width)
	}
	return out
}

// groupExpanded opens a group the user opened, or one holding a plan the
// auto-expand heuristic opened, unless the user has closed it.
func (c *rowContext) groupExpanded(key string, g *feed.ToolGroup) bool {
	if id := groupStateID(key); c.expand.Overridden(id) {
		return c.expand.IsExpanded(id)
	}
	for _, it := range g.Items {
		if conversation.IsPlan(it) && c.expand.IsExpanded(it.ItemID()) {
			return true
		}
	}
	return false
}

// groupStateID is the expand-state id of a group row. A group is keyed by
// its first item, which toggles separately.
func groupStateID(key string) string {
	return "group:" + key
}

func (c *rowContext) renderGroup(key string, g *feed.ToolGroup) string {
	s := theme.Current().S()
	expanded := c.groupExpanded(key, g)

	var running, failed int
	for _, it := range g.Items {
		st := itemStatus(it)
		switch st {
		case conversation.StatusRunning, conversation.StatusPending:
			running++
		case conversation.StatusFailed:
			failed++
		}
	}

	header := disclosure(expanded) + " " + plural(g.ToolCount(), "tool call", "tool calls")
	if running > 0 {
		header += fmt.Sprintf(" · %d running", running)
	}
	if failed > 0 {
		header += fmt.Sprintf(" · %d failed", failed)
	}
	out := []string{s.GroupHeader.Render(header)}

	child := c.renderer().indented(2)
	pad := lipgloss.NewStyle().PaddingLeft(2)
	if !expanded {
		last := g.Items[len(g.Items)-1]
		out = append(out, pad.Render(firstLine(conversation.Visit(last, child))))
		return strings.Join(out, "\n")
	}
	for _, it := range g.Items {
		out = append(out, pad.Render(conversation.Visit(it, child)))
	}
	return strings.Join(out, "\n")
}

func itemStatus(it conversation.Item) conversation.Status {
	switch v := it.(type) {
	case *conversation.Tool:
		return conversation.NormalizeStatus(v.Status)
	case *conversation.Explore:
		return conversation.NormalizeStatus(v.Status)
	}
	return conversation.StatusUnknown
}

func toolIcon(status conversation.Status) string {
	s := theme.Current().S()
	switch status {
	case conversation.StatusRunning:
		return s.ToolIconRunning.Render("●")
	case conversation.StatusCompleted:
		return s.ToolIconSuccess.Render("✓")
	case conversation.StatusFailed:
		return s.ToolIconError.Render("×")
	case conversation.StatusCanceled:
		return s.ToolIconCanceled.Render("×")
	default:
		return s.ToolIconPending.Render("●")
	}
}

var toolLabels = map[string]string{
	conversation.ToolCommandExecution: "Command",
	conversation.ToolFileChange:       "Edit",
	conversation.ToolWebSearch:        "Web search",
	conversation.ToolImageView:        "Image",
	conversation.ToolMCPCall:          "MCP tool",
	conversation.ToolPlan:             "Plan",
	conversation.ToolSearch:           "Search",
}

func toolTitle(t *conversation.Tool) string {
	if title := strings.TrimSpace(t.Title); title != "" {
		return firstLine(title)
	}
	if label, ok := toolLabels[t.ToolType]; ok {
		return label
	}
	return "Tool"
}

func disclosure(expanded bool) string {
	if expanded {
		return "▾"
	}
	return "▸"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncateLine(s string, width int) string {
	if width < 1 {
		width = 1
	}
	return ansi.Truncate(s, width, "…")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(100 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
