package ui

import (
	"io"

	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	primaryColor = lipgloss.AdaptiveColor{Light: "#007ACC", Dark: "#3D9EFF"}
	successColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	warningColor = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD54F"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
	headingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
)

// Styles are the lipgloss styles bound to one output.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Path    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Active   lipgloss.Style
	Broken   lipgloss.Style
	Direct   lipgloss.Style
	Inactive lipgloss.Style
}

// NewStyles builds Styles for out. Without color every style renders its
// text unchanged.
func NewStyles(out io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Title:   r.NewStyle().Foreground(headingColor).Bold(true),
		Label:   r.NewStyle().Foreground(primaryColor).Bold(true),
		Muted:   r.NewStyle().Foreground(mutedColor),
		Path:    r.NewStyle().Foreground(mutedColor).Italic(true),
		Success: r.NewStyle().Foreground(successColor).Bold(true),
		Warning: r.NewStyle().Foreground(warningColor).Bold(true),
		Error:   r.NewStyle().Foreground(errorColor).Bold(true),

		Active:   r.NewStyle().Foreground(successColor),
		Broken:   r.NewStyle().Foreground(errorColor),
		Direct:   r.NewStyle().Foreground(primaryColor),
		Inactive: r.NewStyle().Foreground(mutedColor),
	}
}

// Status renders a link status.
func (s Styles) Status(status types.LinkStatus) string {
	switch status {
	case types.LinkActive:
		return s.Active.Render(string(status))
	case types.LinkBroken:
		return s.Broken.Render(string(status))
	case types.LinkDirect:
		return s.Direct.Render(string(status))
	default:
		return s.Inactive.Render(string(types.LinkInactive))
	}
}
