package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/tui/styles"
	"memorybank/internal/application/commands"
	"memorybank/internal/domain"
)

// DashboardKeyMap defines key bindings for the dashboard view
type DashboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Edit   key.Binding
	Vault  key.Binding
	Copy   key.Binding
	Reload key.Binding
	Search key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var DashboardKeys = DashboardKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "l"),
		key.WithHelp("enter", "view"),
	),
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
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// DashboardModel lists the documents with their status, the health of the
// bank and cache statistics.
type DashboardModel struct {
	ViewState
	deps Deps

	docs     []commands.DocumentSummary
	health   domain.HealthCheckResult
	stats    cache.Stats
	hasStats bool
	cursor   int
	loaded   bool
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(deps Deps) *DashboardModel {
	return &DashboardModel{deps: deps}
}

type dashboardLoadedMsg struct {
	docs    []commands.DocumentSummary
	health  domain.HealthCheckResult
	stats   cache.Stats
	created []domain.DocumentType
}

type pathCopiedMsg struct {
	path string
}

// Init loads the bank, recreating missing documents
func (m *DashboardModel) Init() tea.Cmd {
	return m.load
}

// Reload reruns the load and refreshes every panel
func (m *DashboardModel) Reload() tea.Cmd {
	return m.load
}

func (m *DashboardModel) load() tea.Msg {
	ctx := background()

	res, err := commands.NewInitCommand(m.deps.Bank).Execute(ctx)
	if err != nil {
		return errMsg{err}
	}
	docs, err := commands.NewListDocumentsCommand(m.deps.Bank).Execute(ctx)
	if err != nil {
		return errMsg{err}
	}

	msg := dashboardLoadedMsg{
		docs:    docs,
		health:  commands.NewHealthCommand(m.deps.Bank).Execute(ctx),
		created: res.Created,
	}
	if m.deps.Cache != nil {
		msg.stats = m.deps.Cache.Stats()
	}
	return msg
}

// Update handles messages for the dashboard
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case dashboardLoadedMsg:
		m.loaded = true
		m.docs = msg.docs
		m.health = msg.health
		m.stats = msg.stats
		m.hasStats = m.deps.Cache != nil
		if m.cursor >= len(m.docs) {
			m.cursor = max(len(m.docs)-1, 0)
		}
		if len(msg.created) > 0 {
			m.SetMessage(fmt.Sprintf("Created %d missing document(s)", len(msg.created)), false)
		}
		return m, nil

	case pathCopiedMsg:
		m.SetMessage("Copied "+msg.path, false)
		return m, nil

	case errMsg:
		m.SetError("", msg.err)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()

		switch {
		case key.Matches(msg, DashboardKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, DashboardKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Down):
			if m.cursor < len(m.docs)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Open):
			if doc, ok := m.Selected(); ok {
				return m, func() tea.Msg { return SwitchToDocumentMsg{Type: doc.Type} }
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Edit):
			if doc, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenEditorMsg{Path: doc.Path} }
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Vault):
			if doc, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenInVaultMsg{Path: doc.Path} }
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Copy):
			if doc, ok := m.Selected(); ok {
				return m, copyPath(doc.Path)
			}
			return m, nil

		case key.Matches(msg, DashboardKeys.Reload):
			return m, m.Reload()

		case key.Matches(msg, DashboardKeys.Search):
			return m, func() tea.Msg { return SwitchToSearchMsg{} }

		case key.Matches(msg, DashboardKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }
		}
	}

	return m, nil
}

func copyPath(path string) tea.Cmd {
	return func() tea.Msg {
		if err := copyToClipboard(path); err != nil {
			return errMsg{fmt.Errorf("failed to copy path: %w", err)}
		}
		return pathCopiedMsg{path: path}
	}
}

// Selected returns the document under the cursor
func (m *DashboardModel) Selected() (commands.DocumentSummary, bool) {
	if m.cursor >= 0 && m.cursor < len(m.docs) {
		return m.docs[m.cursor], true
	}
	return commands.DocumentSummary{}, false
}

// View renders the dashboard
func (m *DashboardModel) View() string {
	if !m.loaded {
		if m.Message != "" {
			return NewViewBuilder().Title("Memory Bank").Message(m.Message, m.MessageErr).String()
		}
		return "Loading..."
	}

	v := NewViewBuilder().
		Title("Memory Bank").
		Subtitle(fmt.Sprintf("%d documents", len(m.docs)))

	for i, doc := range m.docs {
		v.Line(m.renderRow(doc, i == m.cursor))
	}
	v.Line("")

	v.Line(m.renderHealth())
	if m.hasStats {
		v.Line(m.renderStats())
	}

	return v.Message(m.Message, m.MessageErr).
		Help(DashboardKeys.Up, DashboardKeys.Open, DashboardKeys.Edit, DashboardKeys.Vault, DashboardKeys.Copy,
			DashboardKeys.Reload, DashboardKeys.Search, DashboardKeys.Help, DashboardKeys.Quit).
		String()
}

func (m *DashboardModel) renderRow(doc commands.DocumentSummary, selected bool) string {
	text := fmt.Sprintf("%-16s %-16s %7s", doc.Title, doc.Type, formatSize(doc.Size))
	if selected {
		text = styles.RowSelected.Render(text)
	} else {
		text = styles.Row.Render(text)
	}

	line := fmt.Sprintf("%s  %s", text, styles.StatusBadge(doc.Status))
	if len(doc.ValidationErrors) > 0 {
		line += styles.MutedText.Render(fmt.Sprintf("  (%d problem(s))", len(doc.ValidationErrors)))
	}
	return line
}

func (m *DashboardModel) renderHealth() string {
	if m.health.IsHealthy {
		return RenderPanel("Health", styles.Success.Render(m.health.Summary))
	}
	lines := []string{styles.ErrorMsg.Render(m.health.Summary)}
	for _, issue := range m.health.Issues {
		lines = append(lines, "• "+issue)
	}
	return RenderPanel("Health", lines...)
}

func (m *DashboardModel) renderStats() string {
	s := m.stats
	return RenderPanel("Cache",
		RenderLabelValue("entries", fmt.Sprintf("%d/%d", s.CurrentSize, s.MaxSize)),
		RenderLabelValue("hits", fmt.Sprintf("%d (%.0f%%)", s.Hits, s.HitRate*100)),
		RenderLabelValue("misses", fmt.Sprint(s.Misses)),
		RenderLabelValue("evictions", fmt.Sprint(s.Evictions)),
	)
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
