package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"memorybank/internal/adapters/tui/styles"
	"memorybank/internal/application/commands"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Copy   key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy line"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// maxVisibleResults caps the rendered result list
const maxVisibleResults = 10

// SearchModel is the model for the search view
type SearchModel struct {
	ViewState
	deps    Deps
	input   textinput.Model
	results []commands.SearchResult
	cursor  int
}

// NewSearchModel creates a new search view model
func NewSearchModel(deps Deps) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search titles and lines..."
	input.Focus()

	return &SearchModel{
		deps:  deps,
		input: input,
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset resets the search view
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.ClearMessage()
	m.input.Focus()
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		// Drop results of stale queries
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		return m, nil

	case errMsg:
		m.SetError("", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg { return SwitchToDashboardMsg{} }

		case key.Matches(msg, SearchKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if r, ok := m.selected(); ok {
				return m, func() tea.Msg { return SwitchToDocumentMsg{Type: r.Type} }
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Copy):
			if r, ok := m.selected(); ok {
				text := r.MatchedText
				return m, func() tea.Msg {
					if err := copyToClipboard(text); err != nil {
						return errMsg{fmt.Errorf("failed to copy: %w", err)}
					}
					return nil
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	query := m.input.Value()
	if len(query) >= 2 {
		return m, tea.Batch(cmd, m.search(query))
	} else if len(query) == 0 {
		m.results = nil
	}
	return m, cmd
}

func (m *SearchModel) selected() (commands.SearchResult, bool) {
	if m.cursor >= 0 && m.cursor < len(m.results) {
		return m.results[m.cursor], true
	}
	return commands.SearchResult{}, false
}

func (m *SearchModel) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := commands.NewSearchCommand(m.deps.Bank, query).Execute(background())
		if err != nil {
			return errMsg{err}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

// View renders the search view
func (m *SearchModel) View() string {
	v := NewViewBuilder().Title("Search").Line(styles.InputFocused.Render(m.input.View())).Line("")

	switch {
	case len(m.results) > 0:
		v.Muted(fmt.Sprintf("%d results", len(m.results)))
		for i, r := range m.results[:min(len(m.results), maxVisibleResults)] {
			v.Line(renderResult(r, i == m.cursor))
		}
		if len(m.results) > maxVisibleResults {
			v.Muted(fmt.Sprintf("... and %d more", len(m.results)-maxVisibleResults))
		}
	case len(m.input.Value()) >= 2:
		v.Muted("No results found")
	default:
		v.Muted("Type at least 2 characters to search")
	}

	return v.Message(m.Message, m.MessageErr).
		Help(SearchKeys.Up, SearchKeys.Select, SearchKeys.Copy, SearchKeys.Cancel).
		String()
}

func renderResult(r commands.SearchResult, selected bool) string {
	location := r.Type.String()
	if r.Line > 0 {
		location = fmt.Sprintf("%s:%d", r.Type, r.Line)
	}
	text := fmt.Sprintf("%-20s %s", location, r.MatchedText)
	if selected {
		return styles.RowSelected.Render(text)
	}
	return text
}
