package listview

import (
	"context"

	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	tea "github.com/charmbracelet/bubbletea"
)

// recipesLoadedMsg reports the end of a reload.
type recipesLoadedMsg struct{ err error }

// recipeCreatedMsg reports the end of a create (including its reload).
type recipeCreatedMsg struct{ err error }

// recipeDeletedMsg reports the end of a delete (including its reload).
type recipeDeletedMsg struct {
	id  int
	err error
}

// sessionChangedMsg carries a session read from the session file.
type sessionChangedMsg struct{ sess session.Session }

func loadCmd(ctx context.Context, vm *viewmodel.ViewModel) tea.Cmd {
	return func() tea.Msg {
		return recipesLoadedMsg{err: vm.Load(ctx)}
	}
}

func submitCmd(ctx context.Context, vm *viewmodel.ViewModel) tea.Cmd {
	return func() tea.Msg {
		return recipeCreatedMsg{err: vm.SubmitForm(ctx)}
	}
}

func deleteCmd(ctx context.Context, vm *viewmodel.ViewModel, id int) tea.Cmd {
	return func() tea.Msg {
		return recipeDeletedMsg{id: id, err: vm.Delete(ctx, id)}
	}
}

// waitForSession blocks on the next session update. A nil or closed channel
// ends the subscription.
func waitForSession(ch <-chan session.Session) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg{sess: s}
	}
}
