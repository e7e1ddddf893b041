package listview

import (
	"rezepte/cmd/rezepte/ui"
	"rezepte/internal/logging"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		m.instructions.SetWidth(m.formWidth())
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return next, cmd
		}
		return next.updateFocused(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case recipesLoadedMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case recipeCreatedMsg:
		m.busy = false
		if msg.err == nil {
			// Keep whatever was typed while the request was in flight.
			if m.formValues() == m.submitted {
				m.resetForm()
			}
			m.vm.Notify("Rezept gespeichert")
		}
		m.clampCursor()
		return m, nil

	case recipeDeletedMsg:
		m.busy = false
		if msg.err == nil {
			m.vm.Notify("Rezept gelöscht")
		}
		m.clampCursor()
		return m, nil

	case sessionChangedMsg:
		next := waitForSession(m.sessions)
		if !m.vm.SetSession(msg.sess) {
			return m, next
		}
		logging.UIDebug("session changed: %s", msg.sess.Mode())
		m.cursor = 0
		if msg.sess.Mode() != session.ModeAuthenticated && m.focus != focusList {
			m.setFocus(focusList)
		}
		m.loading = true
		return m, tea.Batch(next, loadCmd(m.ctx, m.vm), m.spinner.Tick)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input. Returns (model, cmd, handled) where
// handled=false means the key should go to the focused input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// Global
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit, true
	case tea.KeyCtrlT:
		m.toggleTheme()
		return m, nil, true
	}

	// Modal
	if m.vm.ModalOpen() {
		switch msg.String() {
		case "esc", "q":
			m.vm.CloseModal()
		case "d", "delete":
			if m.busy {
				return m, nil, true
			}
			sel, ok := m.vm.Selected()
			if !ok {
				return m, nil, true
			}
			m.busy = true
			return m, tea.Batch(deleteCmd(m.ctx, m.vm, sel.ID), m.spinner.Tick), true
		case "t":
			m.toggleTheme()
		}
		return m, nil, true
	}

	switch m.focus {
	case focusSearch:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.setFocus(focusList)
			return m, nil, true
		}
		return m, nil, false

	case focusName, focusInstructions, focusCategory:
		switch msg.Type {
		case tea.KeyEsc:
			m.setFocus(focusList)
			return m, nil, true
		case tea.KeyTab:
			return m, m.setFocus(nextFormField(m.focus)), true
		case tea.KeyShiftTab:
			return m, m.setFocus(prevFormField(m.focus)), true
		case tea.KeyCtrlS:
			return m.submit()
		case tea.KeyEnter:
			if m.focus != focusInstructions {
				return m.submit()
			}
		}
		return m, nil, false
	}

	// List
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit, true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.vm.Visible())-1 {
			m.cursor++
		}
	case "enter":
		visible := m.vm.Visible()
		if m.cursor >= 0 && m.cursor < len(visible) {
			m.vm.Select(visible[m.cursor])
		}
	case "/":
		if m.vm.Mode() == session.ModeAuthenticated {
			return m, m.setFocus(focusSearch), true
		}
	case "n":
		if m.vm.Mode() == session.ModeAuthenticated {
			return m, m.setFocus(focusName), true
		}
	case "t":
		m.toggleTheme()
	case "r":
		if !m.loading {
			m.loading = true
			return m, tea.Batch(loadCmd(m.ctx, m.vm), m.spinner.Tick), true
		}
	case "x":
		m.vm.DismissNotices()
	}
	return m, nil, true
}

// updateFocused forwards a key to the focused input.
func (m Model) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
		m.vm.SetSearch(m.search.Value())
		m.clampCursor()
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusInstructions:
		m.instructions, cmd = m.instructions.Update(msg)
	case focusCategory:
		m.category, cmd = m.category.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd, bool) {
	if m.busy {
		return m, nil, true
	}
	m.submitted = m.formValues()
	m.vm.SetForm(m.submitted)
	m.busy = true
	return m, tea.Batch(submitCmd(m.ctx, m.vm), m.spinner.Tick), true
}

func (m Model) formValues() viewmodel.CreateForm {
	return viewmodel.CreateForm{
		Name:         m.name.Value(),
		Instructions: m.instructions.Value(),
		Category:     m.category.Value(),
	}
}

func (m *Model) resetForm() {
	m.name.Reset()
	m.instructions.Reset()
	m.category.Reset()
}

func (m *Model) toggleTheme() {
	m.vm.ToggleTheme()
	m.styles = ui.NewStyles(ui.ThemeFor(m.vm.IsDarkMode()))
	m.spinner.Style = m.styles.Spinner
}

// setFocus moves keyboard focus and returns the cursor blink command.
func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.search.Blur()
	m.name.Blur()
	m.instructions.Blur()
	m.category.Blur()
	m.focus = f

	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusName:
		return m.name.Focus()
	case focusInstructions:
		return m.instructions.Focus()
	case focusCategory:
		return m.category.Focus()
	}
	return nil
}

func (m *Model) clampCursor() {
	n := len(m.vm.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextFormField(f focusArea) focusArea {
	switch f {
	case focusName:
		return focusInstructions
	case focusInstructions:
		return focusCategory
	default:
		return focusName
	}
}

func prevFormField(f focusArea) focusArea {
	switch f {
	case focusCategory:
		return focusInstructions
	case focusInstructions:
		return focusName
	default:
		return focusCategory
	}
}
