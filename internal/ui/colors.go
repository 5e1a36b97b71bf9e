package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#5B4FE9", "#04B575", "#FF6B6B", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	done     lipgloss.Style
	overdue  lipgloss.Style
	dueToday lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		tab:      NewStyle(h).Padding(0, 1),
		tabOn:    NewBold("#FFFFFF").Background(lipgloss.Color(t)).Padding(0, 1),
		done:     NewStyle(h).Strikethrough(true),
		overdue:  NewBold(e),
		dueToday: NewStyle(w),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Swatch renders text in a category's display color.
func Swatch(text, color string) string {
	return NewBold(color).Render(text)
}
