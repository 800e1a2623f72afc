// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/kang357/internal/game/card"
)

// Icon constants
const (
	HostIcon   = "👑"
	PlayerIcon = "🙂"
	TurnIcon   = "👉"
	WinnerIcon = "🏆"
)

// Lipgloss Styles
var (
	DocStyle      = lipgloss.NewStyle().Margin(1, 2)
	RedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	BlackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")).Bold(true)
	TitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	PromptStyle   = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	OKStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	TurnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// CardStyle 红心、方块用红色，其余黑色
func CardStyle(c card.Card) lipgloss.Style {
	if c.Suit.IsRed() {
		return RedStyle
	}
	return BlackStyle
}
