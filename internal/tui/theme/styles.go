package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	// Header and footer
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	Footer      lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	// Messages
	UserBubble      lipgloss.Style
	AssistantBorder lipgloss.Style
	MessageMeta     lipgloss.Style
	ExpandHint      lipgloss.Style

	// Reasoning
	ReasoningTitle lipgloss.Style
	ReasoningBody  lipgloss.Style

	// Tools
	ToolIconPending  lipgloss.Style
	ToolIconRunning  lipgloss.Style
	ToolIconSuccess  lipgloss.Style
	ToolIconError    lipgloss.Style
	ToolIconCanceled lipgloss.Style
	ToolTitle        lipgloss.Style
	ToolDetail       lipgloss.Style
	ToolOutput       lipgloss.Style
	ToolError        lipgloss.Style
	ToolTruncation   lipgloss.Style
	ToolDuration     lipgloss.Style
	CodeBlock        lipgloss.Style

	// Groups, explore, diff and review rows
	GroupHeader  lipgloss.Style
	ExploreTitle lipgloss.Style
	ExploreEntry lipgloss.Style
	DiffTitle    lipgloss.Style
	ReviewMarker lipgloss.Style

	// Row cursor gutter
	Cursor lipgloss.Style

	// Trailing affordances
	WorkingLabel   lipgloss.Style
	WorkingElapsed lipgloss.Style
	Trailer        lipgloss.Style
	Flash          lipgloss.Style

	// Panels
	PanelBorder        lipgloss.Style
	PanelBorderFocused lipgloss.Style
	PanelTitle         lipgloss.Style
	PanelMeta          lipgloss.Style
	Button             lipgloss.Style
	ButtonFocused      lipgloss.Style
	ButtonDisabled     lipgloss.Style
	Option             lipgloss.Style
	OptionSelected     lipgloss.Style
	OptionDescription  lipgloss.Style
}

// buildStyles constructs the pre-built styles from theme colors.
func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().Padding(0, 1)
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.BgSurface2)).
		Padding(0, 1)

	return &Styles{
		HeaderTitle: t.color(t.Primary).Bold(true),
		HeaderMeta:  t.color(t.FgSubtle),
		Footer:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)).Padding(0, 1),

		HintKey:       t.color(t.FgBase),
		HintDesc:      t.color(t.FgMuted),
		HintSeparator: t.color(t.BgSurface2),

		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t.Secondary)).
			PaddingLeft(1),
		AssistantBorder: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t.Primary)).
			PaddingLeft(1),
		MessageMeta: t.color(t.FgMuted).Italic(true),
		ExpandHint:  t.color(t.Tertiary).Italic(true),

		ReasoningTitle: t.color(t.FgSubtle).Italic(true),
		ReasoningBody:  t.color(t.FgMuted).PaddingLeft(2),

		ToolIconPending:  t.color(t.FgMuted),
		ToolIconRunning:  t.color(t.Warning),
		ToolIconSuccess:  t.color(t.Success),
		ToolIconError:    t.color(t.Error),
		ToolIconCanceled: t.color(t.FgMuted),
		ToolTitle:        t.color(t.FgBase).Bold(true),
		ToolDetail:       t.color(t.FgSubtle),
		ToolOutput: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Background(lipgloss.Color(t.BgMantle)).
			MarginLeft(2),
		ToolError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Background(lipgloss.Color(t.BgMantle)).
			MarginLeft(2),
		ToolTruncation: t.color(t.FgMuted).Italic(true).MarginLeft(2),
		ToolDuration:   t.color(t.FgMuted),
		CodeBlock:      lipgloss.NewStyle().Background(lipgloss.Color(t.BgSurface0)).MarginLeft(2),

		GroupHeader:  t.color(t.Tertiary),
		ExploreTitle: t.color(t.Info),
		ExploreEntry: t.color(t.FgSubtle).PaddingLeft(4),
		DiffTitle:    t.color(t.Secondary).Bold(true),
		ReviewMarker: t.color(t.Warning).Bold(true),

		Cursor: t.color(t.Primary).Bold(true),

		WorkingLabel:   t.color(t.FgBase),
		WorkingElapsed: t.color(t.FgMuted),
		Trailer:        t.color(t.FgMuted).Italic(true),
		Flash: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Success)).
			Padding(0, 1).
			Bold(true),

		PanelBorder:        panel,
		PanelBorderFocused: panel.BorderForeground(lipgloss.Color(t.Primary)),
		PanelTitle:         t.color(t.Primary).Bold(true),
		PanelMeta:          t.color(t.FgMuted),
		Button: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface1)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgSurface0)),
		Option:            t.color(t.FgBase),
		OptionSelected:    t.color(t.Primary).Bold(true),
		OptionDescription: t.color(t.FgMuted),
	}
}
