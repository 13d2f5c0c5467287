package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"memorybank/internal/adapters/tui/styles"
	"memorybank/internal/application/commands"
	"memorybank/internal/domain"
)

// DocumentKeyMap defines key bindings for the document view
type DocumentKeyMap struct {
	Edit  key.Binding
	Vault key.Binding
	Copy  key.Binding
	Back  key.Binding
}

var DocumentKeys = DocumentKeyMap{
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Vault: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "obsidian"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q", "h"),
		key.WithHelp("esc", "back"),
	),
}

// headerLines is the space taken by the title, metadata and help rows
const headerLines = 8

// DocumentModel shows one document in a scrollable viewport
type DocumentModel struct {
	ViewState
	deps     Deps
	record   *domain.DocumentRecord
	viewport viewport.Model
}

// NewDocumentModel creates a new document view model
func NewDocumentModel(deps Deps) *DocumentModel {
	return &DocumentModel{
		deps:     deps,
		viewport: viewport.New(80, 20),
	}
}

type documentLoadedMsg struct {
	record *domain.DocumentRecord
}

// Show loads the document of the given type
func (m *DocumentModel) Show(dt domain.DocumentType) tea.Cmd {
	m.record = nil
	m.ClearMessage()
	return func() tea.Msg {
		rec, err := commands.NewShowDocumentCommand(m.deps.Bank, dt.String()).Execute(background())
		if err != nil {
			return errMsg{err}
		}
		return documentLoadedMsg{record: rec}
	}
}

// Init initializes the document view
func (m *DocumentModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document view
func (m *DocumentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case documentLoadedMsg:
		m.record = msg.record
		m.viewport.SetContent(msg.record.Content)
		m.viewport.GotoTop()
		return m, nil

	case pathCopiedMsg:
		m.SetMessage("Copied "+msg.path, false)
		return m, nil

	case errMsg:
		m.SetError("", msg.err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DocumentKeys.Back):
			return m, func() tea.Msg { return SwitchToDashboardMsg{} }

		case key.Matches(msg, DocumentKeys.Edit):
			if m.record != nil {
				path := m.record.FilePath
				return m, func() tea.Msg { return OpenEditorMsg{Path: path} }
			}
			return m, nil

		case key.Matches(msg, DocumentKeys.Vault):
			if m.record != nil {
				path := m.record.FilePath
				return m, func() tea.Msg { return OpenInVaultMsg{Path: path} }
			}
			return m, nil

		case key.Matches(msg, DocumentKeys.Copy):
			if m.record != nil {
				return m, copyPath(m.record.FilePath)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize updates the view and viewport dimensions
func (m *DocumentModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = m.BodyHeight(headerLines, 5)
}

// View renders the document view
func (m *DocumentModel) View() string {
	if m.record == nil {
		if m.Message != "" {
			return NewViewBuilder().Title("Document").Message(m.Message, m.MessageErr).String()
		}
		return "Loading..."
	}

	rec := m.record
	meta := fmt.Sprintf("%s  %s  %s",
		styles.Path.Render(rec.FilePath),
		styles.StatusBadge(rec.Status),
		styles.MutedText.Render(rec.LastUpdated.Format("2006-01-02 15:04")),
	)

	v := NewViewBuilder().Title(rec.Type.Title()).Line(meta)
	if len(rec.ValidationErrors) > 0 {
		v.Line(styles.ErrorMsg.Render(strings.Join(rec.ValidationErrors, "; ")))
	}
	return v.Line("").
		Line(m.viewport.View()).
		Muted(fmt.Sprintf("%3.0f%%", m.viewport.ScrollPercent()*100)).
		Message(m.Message, m.MessageErr).
		Help(DocumentKeys.Edit, DocumentKeys.Vault, DocumentKeys.Copy, DocumentKeys.Back).
		String()
}
