package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Teal accent for the ClarifyAI branding.
const accentTeal = "#14B8A6"

// CLARIFY ASCII art (filled block style)
var clarifyArt = []string{
	" ██████╗██╗      █████╗ ██████╗ ██╗███████╗██╗   ██╗",
	"██╔════╝██║     ██╔══██╗██╔══██╗██║██╔════╝╚██╗ ██╔╝",
	"██║     ██║     ███████║██████╔╝██║█████╗   ╚████╔╝ ",
	"██║     ██║     ██╔══██║██╔══██╗██║██╔══╝    ╚██╔╝  ",
	"╚██████╗███████╗██║  ██║██║  ██║██║██║        ██║   ",
	" ╚═════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚═╝        ╚═╝   ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner        lipgloss.Style
	User          lipgloss.Style
	Assistant     lipgloss.Style
	System        lipgloss.Style
	Tips          lipgloss.Style
	Error         lipgloss.Style
	Prompt        lipgloss.Style
	Separator     lipgloss.Style
	StatusBar     lipgloss.Style
	ContextHint   lipgloss.Style
	ContextHeader lipgloss.Style
	ContextChunk  lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentTeal)),
		User:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:        lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:          lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		ContextHint:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		ContextHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110")),
		ContextChunk:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the CLARIFY ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range clarifyArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"  • Ask questions about your uploaded documents",
	"  • Use /context to see what the answer was grounded on",
	"  • Use /help to see available commands",
	"  • Press Ctrl+C to cancel, Ctrl+D to exit",
}

// RenderWelcomeTips returns the greeting and tips under the banner.
func (s Styles) RenderWelcomeTips(username string) string {
	var b strings.Builder
	_, _ = b.WriteString(s.Tips.Render("Signed in as " + username))
	_, _ = b.WriteString("\n")
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
