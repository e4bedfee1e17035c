// Package ui holds layout helpers shared by terminal views.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/task-reminders/internal/theme"
)

// Layout splits the terminal into a header, a content area, a status
// bar and a help line.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
	HelpHeight      int
}

// NewLayout creates a Layout with one-line header, status bar and help.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
		HelpHeight:      1,
	}
}

// ContentHeight returns the height left for the content area. It is at
// least one line.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight-l.HelpHeight, 1)
}

// RenderHeader renders the title on the left and status on the right,
// filling the full width.
func (l Layout) RenderHeader(title, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.Align(lipgloss.Right).Render(status)

	gap := max(l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(statusRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, filler, statusRendered)
}

// RenderStatusBar renders text on a full-width bar.
func (l Layout) RenderStatusBar(text string) string {
	rendered := theme.StatusBarStyle.Render(text)

	gap := max(l.Width-lipgloss.Width(rendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// Render stacks header, content, status bar and help.
func (l Layout) Render(header, content, statusBar, help string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar, help)
}
