// Test utilities for the recipe screen: an in-memory backend, a model
// factory and helpers to drive the update loop by hand.
package listview

import (
	"context"
	"sync"
	"testing"

	"rezepte/internal/recipe"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MOCK BACKEND
// =============================================================================

type mockAPI struct {
	mu        sync.Mutex
	recipes   []recipe.Recipe
	nextID    int
	creates   []recipe.CreateRequest
	deletes   []int
	createErr error
	deleteErr error
}

func newMockAPI(rs ...recipe.Recipe) *mockAPI {
	return &mockAPI{recipes: append([]recipe.Recipe(nil), rs...), nextID: 500}
}

func (a *mockAPI) ListRecipes(context.Context, int) ([]recipe.Recipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recipe.Recipe{}, a.recipes...), nil
}

func (a *mockAPI) CreateRecipe(_ context.Context, req recipe.CreateRequest) (recipe.Recipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creates = append(a.creates, req)
	if a.createErr != nil {
		return recipe.Recipe{}, a.createErr
	}
	a.nextID++
	r := recipe.Recipe{ID: a.nextID, Name: req.Name, Instructions: req.Instructions, Category: req.Category, UserID: req.UserID}
	a.recipes = append(a.recipes, r)
	return r, nil
}

func (a *mockAPI) DeleteRecipe(_ context.Context, id, _ int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletes = append(a.deletes, id)
	if a.deleteErr != nil {
		return a.deleteErr
	}
	kept := a.recipes[:0]
	for _, r := range a.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	a.recipes = kept
	return nil
}

// =============================================================================
// FIXTURES
// =============================================================================

var testRecipes = []recipe.Recipe{
	{ID: 1, Name: "Pfannkuchen", Instructions: "Mehl, Eier und Milch verrühren.", Category: "Frühstück", UserID: 123},
	{ID: 2, Name: "Pizza", Instructions: "Teig **ausrollen** und backen.", Category: "Hauptgericht", UserID: 123},
	{ID: 99, Name: "Test", Instructions: "Nichts tun.", UserID: 123},
}

// NewTestModel returns a loaded screen over a mock backend.
func NewTestModel(t *testing.T, sess session.Session, rs ...recipe.Recipe) (Model, *mockAPI) {
	t.Helper()
	backend := newMockAPI(rs...)
	vm := viewmodel.New(backend, sess)
	require.NoError(t, vm.Mount(context.Background()))

	m := New(vm)
	next, _ := m.Update(recipesLoadedMsg{})
	return next.(Model), backend
}

// =============================================================================
// DRIVERS
// =============================================================================

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return a listview.Model")
	return out, cmd
}

// runCmd executes cmd and every command batched into it, returning the
// resulting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds every domain message back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		switch msg.(type) {
		case recipesLoadedMsg, recipeCreatedMsg, recipeDeletedMsg, sessionChangedMsg:
			m, _ = press(t, m, msg)
		}
	}
	return m
}
