// Package listview implements the interactive recipe screen: a searchable
// card list, the creation form, the recipe modal and the theme toggle. All
// state lives in a viewmodel.ViewModel; this package only maps keys to
// view-model operations and renders snapshots.
package listview

import (
	"context"
	"errors"

	"rezepte/cmd/rezepte/ui"
	"rezepte/internal/logging"
	"rezepte/internal/session"
	"rezepte/internal/viewmodel"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focusArea is the widget receiving keystrokes.
type focusArea int

const (
	focusList focusArea = iota
	focusSearch
	focusName
	focusInstructions
	focusCategory
)

// String returns a readable name for the focus area.
func (f focusArea) String() string {
	switch f {
	case focusSearch:
		return "search"
	case focusName:
		return "name"
	case focusInstructions:
		return "instructions"
	case focusCategory:
		return "category"
	default:
		return "list"
	}
}

// Model is the bubbletea model of the recipe screen.
type Model struct {
	ctx context.Context
	vm  *viewmodel.ViewModel

	styles ui.Styles
	md     *ui.MarkdownRenderer

	search       textinput.Model
	name         textinput.Model
	category     textinput.Model
	instructions textarea.Model
	spinner      spinner.Model

	// submitted is the form as sent by the pending create.
	submitted viewmodel.CreateForm

	focus  focusArea
	cursor int
	width  int
	height int

	loading  bool
	busy     bool
	quitting bool
	plain    bool

	sessions <-chan session.Session
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context passed to backend calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithSessionUpdates subscribes the screen to live session changes.
func WithSessionUpdates(ch <-chan session.Session) Option {
	return func(m *Model) { m.sessions = ch }
}

// WithMarkdownRenderer shares a renderer (and its cache) with the model.
func WithMarkdownRenderer(r *ui.MarkdownRenderer) Option {
	return func(m *Model) { m.md = r }
}

// WithPlainInstructions shows instructions verbatim instead of as markdown.
func WithPlainInstructions() Option {
	return func(m *Model) { m.plain = true }
}

// New creates the screen for vm.
func New(vm *viewmodel.ViewModel, opts ...Option) Model {
	search := textinput.New()
	search.Placeholder = "Suche..."
	search.Prompt = "🔍 "
	search.CharLimit = 80

	name := textinput.New()
	name.Placeholder = "Rezept Name"
	name.CharLimit = 120

	category := textinput.New()
	category.Placeholder = "Kategorie"
	category.CharLimit = 60

	instructions := textarea.New()
	instructions.Placeholder = "Zubereitung"
	instructions.ShowLineNumbers = false
	instructions.SetWidth(60)
	instructions.SetHeight(4)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:          context.Background(),
		vm:           vm,
		styles:       ui.NewStyles(ui.ThemeFor(vm.IsDarkMode())),
		search:       search,
		name:         name,
		category:     category,
		instructions: instructions,
		spinner:      sp,
		focus:        focusList,
		width:        80,
		height:       24,
		loading:      true,
	}
	for _, o := range opts {
		o(&m)
	}
	if m.md == nil {
		m.md = ui.NewMarkdownRenderer(64)
	}
	m.spinner.Style = m.styles.Spinner
	return m
}

// Init starts the initial load and the session subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadCmd(m.ctx, m.vm),
		waitForSession(m.sessions),
	)
}

// Run starts the interactive program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, vm *viewmodel.ViewModel, opts ...Option) error {
	opts = append([]Option{WithContext(ctx)}, opts...)
	p := tea.NewProgram(
		New(vm, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	logging.UIDebug("starting recipe screen")
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
