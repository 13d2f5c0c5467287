// Package tui is the terminal dashboard over a memory bank.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"memorybank/internal/adapters/tui/views"
	"memorybank/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewDocument
	ViewSearch
	ViewHelp
)

// App is the main TUI application model
type App struct {
	editor ports.EditorOpener
	vault  ports.VaultOpener

	state     ViewState
	dashboard *views.DashboardModel
	document  *views.DocumentModel
	search    *views.SearchModel
	help      *views.HelpModel

	width  int
	height int
}

// Option configures an App
type Option func(*App)

// WithVaultOpener enables opening documents in Obsidian
func WithVaultOpener(v ports.VaultOpener) Option {
	return func(a *App) {
		a.vault = v
	}
}

// NewApp creates a new TUI application. ed may be nil to disable editing.
func NewApp(deps views.Deps, ed ports.EditorOpener, opts ...Option) *App {
	a := &App{
		editor:    ed,
		state:     ViewDashboard,
		dashboard: views.NewDashboardModel(deps),
		document:  views.NewDocumentModel(deps),
		search:    views.NewSearchModel(deps),
		help:      views.NewHelpModel(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.document.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToDocumentMsg:
		a.state = ViewDocument
		return a, a.document.Show(msg.Type)

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToDashboardMsg:
		a.state = ViewDashboard
		return a, a.dashboard.Reload()

	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path)

	case views.OpenInVaultMsg:
		return a, a.openInVault(msg.Path)

	case vaultOpenedMsg:
		if msg.err != nil {
			a.dashboard.SetError("Obsidian", msg.err)
			a.document.SetError("Obsidian", msg.err)
			return a, nil
		}
		a.dashboard.SetMessage("Opened "+msg.path+" in Obsidian", false)
		a.document.SetMessage("Opened "+msg.path+" in Obsidian", false)
		return a, nil

	case editorFinishedMsg:
		// The file changed underneath us; reload what is on screen
		a.state = ViewDashboard
		if msg.err != nil {
			a.dashboard.SetError("Editor", msg.err)
		}
		return a, a.dashboard.Reload()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewDashboard:
		_, cmd = a.dashboard.Update(msg)
	case ViewDocument:
		_, cmd = a.document.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

type vaultOpenedMsg struct {
	path string
	err  error
}

func (a *App) openInVault(path string) tea.Cmd {
	if a.vault == nil {
		return func() tea.Msg {
			return vaultOpenedMsg{path: path, err: errors.New("no vault configured")}
		}
	}
	return func() tea.Msg {
		return vaultOpenedMsg{path: path, err: a.vault.OpenFile(path)}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewDocument:
		return a.document.View()
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.dashboard.View()
	}
}
