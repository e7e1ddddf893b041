// Package ui provides the visual styling for the rezepte terminal client.
// Dark mode is the default; the light palette is selected by the theme toggle.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#faf7f2") // Cream
	LightForeground = lipgloss.Color("#2b2118") // Espresso
	LightPrimary    = lipgloss.Color("#b5452b") // Paprika
	LightAccent     = lipgloss.Color("#6a994e") // Basil
	LightSecondary  = lipgloss.Color("#efe6da")
	LightMuted      = lipgloss.Color("#8c7b6b")
	LightBorder     = lipgloss.Color("#dccfbf")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#1c1714")
	DarkForeground = lipgloss.Color("#f2ebe3")
	DarkPrimary    = lipgloss.Color("#f08a5d") // Paprika (lightened)
	DarkAccent     = lipgloss.Color("#a7c957") // Basil (lightened)
	DarkSecondary  = lipgloss.Color("#2a231e")
	DarkMuted      = lipgloss.Color("#8f8275")
	DarkBorder     = lipgloss.Color("#3b322b")
	DarkCard       = lipgloss.Color("#241e1a")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#6a994e")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor picks the theme for the dark mode flag.
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

// MarkdownStyle returns the glamour style name matching the theme.
func (t Theme) MarkdownStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style

	// Recipe list
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardTitle    lipgloss.Style
	Category     lipgloss.Style

	// Modal
	Modal        lipgloss.Style
	ModalSection lipgloss.Style

	// Form
	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	SaveButton   lipgloss.Style
	ThemeButton  lipgloss.Style

	// Status
	Error   lipgloss.Style
	Success lipgloss.Style
	Spinner lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	card := lipgloss.NewStyle().
		Background(theme.Card).
		Foreground(theme.Foreground).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	input := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.Border)

	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Card: card,

		CardSelected: card.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		CardTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Category: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Primary),

		ModalSection: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			MarginTop(1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Input: input,

		InputFocused: input.
			BorderForeground(theme.Accent),

		SaveButton: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 2).
			Bold(true),

		ThemeButton: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// Logo returns the welcome banner.
func Logo(s Styles) string {
	logo := `
  ___             _   _
 | _ \___ ______ | |_| |_ ___
 |   / -_)_ / -_)|  _|  _/ -_)
 |_|_\___/__\___| \__|\__\___|
`
	return s.Title.Render(logo)
}

// ThemeIcon returns the label for the theme toggle button.
func (s Styles) ThemeIcon() string {
	if s.Theme.IsDark {
		return "☀ Hell"
	}
	return "☾ Dunkel"
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 0 {
		width = 0
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
