// Package viewmodel is the client-side recipe screen without any rendering:
// the recipe store, search filter, create/delete orchestration, the
// single-slot selection modal, the session gate and the theme flag.
//
// The backend is the source of truth. Every successful mutation is followed
// by a full reload instead of a local patch, and reloads are serialized so a
// stale response never overwrites a newer one.
package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"rezepte/internal/logging"
	"rezepte/internal/recipe"
	"rezepte/internal/session"
)

var (
	// ErrNotLoggedIn is returned by mutations in anonymous mode.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrEmptyName is returned when creating a recipe without a name.
	ErrEmptyName = errors.New("recipe name is empty")
)

// RecipeAPI is the backend as seen by the view-model. *api.Client implements it.
// List and delete are scoped to the owning user; the backend answers only
// with, and only deletes, that user's recipes.
type RecipeAPI interface {
	ListRecipes(ctx context.Context, userID int) ([]recipe.Recipe, error)
	CreateRecipe(ctx context.Context, req recipe.CreateRequest) (recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, id, userID int) error
}

// CreateForm holds the unsent contents of the creation form.
type CreateForm struct {
	Name         string
	Instructions string
	Category     string
}

// IsEmpty reports whether nothing has been typed.
func (f CreateForm) IsEmpty() bool {
	return f == CreateForm{}
}

// State is an immutable snapshot for rendering.
type State struct {
	Mode       session.Mode
	Session    session.Session
	Recipes    []recipe.Recipe // filtered, empty in anonymous mode
	Total      int             // size of the unfiltered store
	SearchTerm string
	DarkMode   bool
	ThemeClass string
	Selected   *recipe.Recipe
	Form       CreateForm
	Notice     *Notice
	Loading    bool
	Loaded     bool
}

// ViewModel is safe for concurrent use. Network calls run without holding
// the state lock.
type ViewModel struct {
	api      RecipeAPI
	reloader *reloader
	now      func() time.Time

	mu         sync.RWMutex
	sess       session.Session
	recipes    []recipe.Recipe
	loaded     bool
	searchTerm string
	darkMode   bool
	selected   *recipe.Recipe
	form       CreateForm
	notices    []Notice
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithDarkMode sets the initial theme. The default is dark.
func WithDarkMode(dark bool) Option {
	return func(vm *ViewModel) { vm.darkMode = dark }
}

// WithClock replaces time.Now for notice timestamps.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

// New creates a ViewModel for the given backend and externally supplied session.
func New(backend RecipeAPI, sess session.Session, opts ...Option) *ViewModel {
	vm := &ViewModel{
		api:      backend,
		sess:     sess,
		darkMode: true,
		now:      time.Now,
	}
	for _, o := range opts {
		o(vm)
	}
	fetch := func(ctx context.Context) ([]recipe.Recipe, error) {
		return backend.ListRecipes(ctx, vm.Session().UserID)
	}
	vm.reloader = newReloader(fetch, vm.replaceRecipes, func(err error) {
		logging.Get(logging.CategoryStore).Warnw("reload failed", "error", err)
		vm.notify(NoticeError, describe("Laden fehlgeschlagen", err))
	})
	return vm
}

// =============================================================================
// STORE
// =============================================================================

// Mount performs the initial load. It fetches regardless of the session;
// anonymous mode simply shows nothing.
func (vm *ViewModel) Mount(ctx context.Context) error {
	return vm.Load(ctx)
}

// Load replaces the store with the backend's list. On failure the store is
// left untouched and a notice is recorded.
func (vm *ViewModel) Load(ctx context.Context) error {
	start := time.Now()
	err := vm.reloader.Reload(ctx)
	logging.Audit(logging.AuditEvent{
		Type:       logging.AuditReload,
		UserID:     vm.Session().UserID,
		Success:    err == nil,
		DurationMs: logging.Since(start),
		Error:      errString(err),
	})
	return err
}

func (vm *ViewModel) replaceRecipes(recipes []recipe.Recipe) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.recipes = append([]recipe.Recipe(nil), recipes...)
	vm.loaded = true

	// Drop a selection that no longer exists.
	if vm.selected != nil {
		if r, ok := recipe.FindByID(vm.recipes, vm.selected.ID); ok {
			vm.selected = &r
		} else {
			vm.selected = nil
		}
	}
	logging.StoreDebug("store replaced: %d recipes", len(vm.recipes))
}

// SetRecipes replaces the store directly, bypassing the backend.
func (vm *ViewModel) SetRecipes(recipes []recipe.Recipe) {
	vm.replaceRecipes(recipes)
}

// Recipes returns a copy of the whole store.
func (vm *ViewModel) Recipes() []recipe.Recipe {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]recipe.Recipe(nil), vm.recipes...)
}

// Visible returns the recipes to display: the filtered store when logged
// in, nothing otherwise.
func (vm *ViewModel) Visible() []recipe.Recipe {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.visibleLocked()
}

func (vm *ViewModel) visibleLocked() []recipe.Recipe {
	if vm.sess.Mode() != session.ModeAuthenticated {
		return []recipe.Recipe{}
	}
	return append([]recipe.Recipe{}, recipe.Filter(vm.recipes, vm.searchTerm)...)
}

// =============================================================================
// SEARCH
// =============================================================================

// SetSearch updates the search term. The visible list is recomputed on read.
func (vm *ViewModel) SetSearch(term string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.searchTerm = term
}

// SearchTerm returns the current search term.
func (vm *ViewModel) SearchTerm() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.searchTerm
}

// =============================================================================
// CRUD
// =============================================================================

// Create posts a new recipe owned by the current user and reloads the store.
func (vm *ViewModel) Create(ctx context.Context, name, instructions string) error {
	return vm.create(ctx, CreateForm{Name: name, Instructions: instructions})
}

// SubmitForm creates a recipe from the form. The form is cleared only when
// the create succeeds so a failed attempt can be retried.
func (vm *ViewModel) SubmitForm(ctx context.Context) error {
	form := vm.Form()
	if err := vm.create(ctx, form); err != nil {
		return err
	}
	vm.mu.Lock()
	if vm.form == form {
		vm.form = CreateForm{}
	}
	vm.mu.Unlock()
	return nil
}

func (vm *ViewModel) create(ctx context.Context, form CreateForm) error {
	sess := vm.Session()
	if sess.Mode() != session.ModeAuthenticated {
		vm.notify(NoticeError, describe("Speichern fehlgeschlagen", ErrNotLoggedIn))
		return ErrNotLoggedIn
	}
	if strings.TrimSpace(form.Name) == "" {
		vm.notify(NoticeError, describe("Speichern fehlgeschlagen", ErrEmptyName))
		return ErrEmptyName
	}

	req := recipe.CreateRequest{
		Name:         form.Name,
		Instructions: form.Instructions,
		Category:     form.Category,
		UserID:       sess.UserID,
	}

	start := time.Now()
	_, err := vm.api.CreateRecipe(ctx, req)
	logging.Audit(logging.AuditEvent{
		Type:       logging.AuditRecipeCreate,
		UserID:     sess.UserID,
		Success:    err == nil,
		DurationMs: logging.Since(start),
		Error:      errString(err),
	})
	if err != nil {
		vm.notify(NoticeError, describe("Speichern fehlgeschlagen", err))
		return err
	}

	// A failed reload is already reported as a notice; the create stands.
	_ = vm.Load(ctx)
	return nil
}

// Delete removes a recipe, closes the modal and reloads the store. On
// failure the modal stays open so the error is shown in context.
func (vm *ViewModel) Delete(ctx context.Context, id int) error {
	sess := vm.Session()
	if sess.Mode() != session.ModeAuthenticated {
		vm.notify(NoticeError, describe("Löschen fehlgeschlagen", ErrNotLoggedIn))
		return ErrNotLoggedIn
	}

	start := time.Now()
	err := vm.api.DeleteRecipe(ctx, id, sess.UserID)
	logging.Audit(logging.AuditEvent{
		Type:       logging.AuditRecipeDelete,
		UserID:     sess.UserID,
		RecipeID:   id,
		Success:    err == nil,
		DurationMs: logging.Since(start),
		Error:      errString(err),
	})
	if err != nil {
		vm.notify(NoticeError, describe("Löschen fehlgeschlagen", err))
		return err
	}

	vm.CloseModal()
	_ = vm.Load(ctx)
	return nil
}

// DeleteSelected deletes the recipe shown in the modal.
func (vm *ViewModel) DeleteSelected(ctx context.Context) error {
	r, ok := vm.Selected()
	if !ok {
		return errors.New("no recipe selected")
	}
	return vm.Delete(ctx, r.ID)
}

// =============================================================================
// FORM
// =============================================================================

// SetForm replaces the form contents.
func (vm *ViewModel) SetForm(f CreateForm) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.form = f
}

// Form returns the form contents.
func (vm *ViewModel) Form() CreateForm {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.form
}

// =============================================================================
// SELECTION / MODAL
// =============================================================================

// Select opens the modal for r, replacing any current selection.
func (vm *ViewModel) Select(r recipe.Recipe) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selected = &r
}

// CloseModal clears the selection.
func (vm *ViewModel) CloseModal() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selected = nil
}

// Selected returns the recipe shown in the modal.
func (vm *ViewModel) Selected() (recipe.Recipe, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.selected == nil {
		return recipe.Recipe{}, false
	}
	return *vm.selected, true
}

// ModalOpen reports whether a recipe is selected.
func (vm *ViewModel) ModalOpen() bool {
	_, ok := vm.Selected()
	return ok
}

// =============================================================================
// SESSION
// =============================================================================

// Session returns the injected session.
func (vm *ViewModel) Session() session.Session {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.sess
}

// Mode returns the render branch selected by the session.
func (vm *ViewModel) Mode() session.Mode {
	return vm.Session().Mode()
}

// SetSession replaces the injected session. It returns true when the
// identity changed, in which case the selection is dropped and the caller
// should reload.
func (vm *ViewModel) SetSession(s session.Session) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.sess == s {
		return false
	}
	changed := vm.sess.UserID != s.UserID || vm.sess.LoggedIn != s.LoggedIn
	vm.sess = s
	if changed {
		vm.selected = nil
	}
	logging.Audit(logging.AuditEvent{Type: logging.AuditSessionSwap, UserID: s.UserID, Success: true})
	return changed
}

// =============================================================================
// THEME
// =============================================================================

// LightThemeClass is the class exposed when dark mode is off.
const LightThemeClass = "light-theme"

// ToggleTheme flips dark mode.
func (vm *ViewModel) ToggleTheme() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.darkMode = !vm.darkMode
}

// IsDarkMode returns the theme flag.
func (vm *ViewModel) IsDarkMode() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.darkMode
}

// ThemeClass returns "light-theme" when not in dark mode, "" otherwise.
func (vm *ViewModel) ThemeClass() string {
	if vm.IsDarkMode() {
		return ""
	}
	return LightThemeClass
}

// =============================================================================
// NOTICES
// =============================================================================

func (vm *ViewModel) notify(level NoticeLevel, msg string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.notices = append(vm.notices, Notice{Level: level, Message: msg, At: vm.now()})
	if len(vm.notices) > maxNotices {
		vm.notices = vm.notices[len(vm.notices)-maxNotices:]
	}
}

// Notify records an informational notice.
func (vm *ViewModel) Notify(msg string) {
	vm.notify(NoticeInfo, msg)
}

// Notices returns all retained notices, oldest first.
func (vm *ViewModel) Notices() []Notice {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]Notice(nil), vm.notices...)
}

// LastNotice returns the newest notice.
func (vm *ViewModel) LastNotice() (Notice, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if len(vm.notices) == 0 {
		return Notice{}, false
	}
	return vm.notices[len(vm.notices)-1], true
}

// DismissNotices clears the notice history.
func (vm *ViewModel) DismissNotices() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.notices = nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot returns a consistent copy of everything a view needs.
func (vm *ViewModel) Snapshot() State {
	loading := vm.reloader.InFlight()

	vm.mu.RLock()
	defer vm.mu.RUnlock()

	st := State{
		Mode:       vm.sess.Mode(),
		Session:    vm.sess,
		Recipes:    vm.visibleLocked(),
		Total:      len(vm.recipes),
		SearchTerm: vm.searchTerm,
		DarkMode:   vm.darkMode,
		Form:       vm.form,
		Loading:    loading,
		Loaded:     vm.loaded,
	}
	if !vm.darkMode {
		st.ThemeClass = LightThemeClass
	}
	if vm.selected != nil {
		sel := *vm.selected
		st.Selected = &sel
	}
	if n := len(vm.notices); n > 0 {
		last := vm.notices[n-1]
		st.Notice = &last
	}
	return st
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
