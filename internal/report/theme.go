package report

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass string
	Fail string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")), // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),            // green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),           // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),           // red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),           // gray
		Icons: ThemeIcons{
			Pass: "✓",
			Fail: "✗",
		},
	}
}

// MonoTheme returns a monochrome theme for non-TTY output and NO_COLOR.
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Header:  lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Icons: ThemeIcons{
			Pass: "+",
			Fail: "x",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	if name == "mono" {
		return MonoTheme()
	}
	return DefaultTheme()
}
