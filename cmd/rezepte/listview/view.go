package listview

import (
	"fmt"
	"strings"

	"rezepte/cmd/rezepte/ui"
	"rezepte/internal/recipe"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/charmbracelet/lipgloss"
)

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.vm.Snapshot()
	var sections []string
	sections = append(sections, m.renderHeader(st))

	if st.Mode != session.ModeAuthenticated {
		sections = append(sections, m.renderWelcome())
	} else {
		sections = append(sections, m.renderGreeting(st))
		if st.Selected != nil {
			sections = append(sections, m.renderModal(*st.Selected))
		} else {
			sections = append(sections, m.renderSearch())
			sections = append(sections, m.renderCards(st)...)
			sections = append(sections, m.renderForm())
		}
	}

	if status := m.renderStatus(st); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.renderFooter(st))

	body := m.styles.Content.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return m.styles.App.Render(body)
}

func (m Model) renderHeader(st viewmodel.State) string {
	title := m.styles.Header.Render("Rezepte")
	themeBtn := m.styles.ThemeButton.Render(m.styles.ThemeIcon())
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", themeBtn)
}

func (m Model) renderWelcome() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.Logo(m.styles),
		m.styles.Title.Render("Willkommen!"),
		m.styles.Subtitle.Render("Logge dich ein, um deine Rezepte zu sehen."),
	)
}

func (m Model) renderGreeting(st viewmodel.State) string {
	name := st.Session.Username
	if name == "" {
		name = fmt.Sprintf("#%d", st.Session.UserID)
	}
	return m.styles.Title.Render(fmt.Sprintf("Hallo, %s!", name))
}

func (m Model) renderSearch() string {
	style := m.styles.Input
	if m.focus == focusSearch {
		style = m.styles.InputFocused
	}
	return style.Width(m.formWidth()).Render(m.search.View())
}

// renderCards returns one block per visible recipe.
func (m Model) renderCards(st viewmodel.State) []string {
	if len(st.Recipes) == 0 {
		if !st.Loaded {
			return []string{m.styles.Muted.Render("Lade Rezepte...")}
		}
		if st.SearchTerm != "" {
			return []string{m.styles.Muted.Render(fmt.Sprintf("Keine Rezepte für %q gefunden.", st.SearchTerm))}
		}
		return []string{m.styles.Muted.Render("Noch keine Rezepte. Drücke n für ein neues.")}
	}

	cards := make([]string, 0, len(st.Recipes))
	for i, r := range st.Recipes {
		cards = append(cards, m.renderCard(r, i == m.cursor && m.focus == focusList))
	}
	return cards
}

func (m Model) renderCard(r recipe.Recipe, active bool) string {
	style := m.styles.Card
	if active {
		style = m.styles.CardSelected
	}
	line := m.styles.CardTitle.Render(r.Name)
	if r.Category != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Center, line, " ", m.styles.Category.Render(r.Category))
	}
	return style.Width(m.formWidth()).Render(line)
}

func (m Model) renderModal(r recipe.Recipe) string {
	parts := []string{m.styles.CardTitle.Render(r.Name)}
	if r.Category != "" {
		parts = append(parts, m.styles.Category.Render(r.Category))
	}
	parts = append(parts, m.styles.ModalSection.Render("Zubereitung"))

	if strings.TrimSpace(r.Instructions) == "" {
		parts = append(parts, m.styles.Muted.Render("Keine Anleitung hinterlegt."))
	} else if m.plain {
		parts = append(parts, m.styles.Body.Width(m.formWidth()-4).Render(r.Instructions))
	} else {
		parts = append(parts, m.md.Render(r.Instructions, m.formWidth()-4, m.styles.Theme))
	}
	parts = append(parts, "", m.styles.Muted.Render("d löschen • esc schließen"))

	return m.styles.Modal.Width(m.formWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderForm() string {
	field := func(label string, f focusArea, view string) string {
		style := m.styles.Input
		if m.focus == f {
			style = m.styles.InputFocused
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Label.Render(label),
			style.Width(m.formWidth()).Render(view),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.ModalSection.Render("Neues Rezept"),
		field("Name", focusName, m.name.View()),
		field("Zubereitung", focusInstructions, m.instructions.View()),
		field("Kategorie", focusCategory, m.category.View()),
		m.styles.SaveButton.Render("Speichern"),
	)
}

func (m Model) renderStatus(st viewmodel.State) string {
	if m.loading || m.busy {
		return m.spinner.View() + " " + m.styles.Muted.Render("Einen Moment...")
	}
	if st.Notice == nil {
		return ""
	}
	if st.Notice.Level == viewmodel.NoticeError {
		return m.styles.Error.Render("✗ " + st.Notice.Message)
	}
	return m.styles.Success.Render("✓ " + st.Notice.Message)
}

func (m Model) renderFooter(st viewmodel.State) string {
	var help string
	switch {
	case st.Mode != session.ModeAuthenticated:
		help = "t Theme • q Beenden"
	case st.Selected != nil:
		help = "d Löschen • esc Schließen • t Theme"
	case m.focus == focusSearch:
		help = "enter/esc Fertig"
	case m.focus != focusList:
		help = "tab Weiter • ctrl+s Speichern • esc Abbrechen"
	default:
		help = "↑/↓ Auswahl • enter Öffnen • / Suchen • n Neu • r Neu laden • t Theme • q Beenden"
	}
	return m.styles.Footer.Render(help)
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 80 {
		w = 80
	}
	if w < 30 {
		w = 30
	}
	return w
}
