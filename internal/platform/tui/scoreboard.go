package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

// Results layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show set list sidebar
	sidebarWidth       = 20 // Width of set list sidebar
)

// ScoreboardKeyMap defines the key bindings for the results view.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Select   key.Binding
	Back     key.Binding
	Quit     key.Binding
	NextSet key.Binding
	PrevSet key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSet, k.PrevSet, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSet, k.PrevSet},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev set"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next set"),
		),
		NextSet: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next set"),
		),
		PrevSet: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev set"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResultsModel shows the best result of every level in a set.
type ResultsModel struct {
	sets        []registry.SetInfo // List of available sets
	setCursor   int                // Currently selected set index
	store       *storage.Store
	set         registry.Set
	best        map[int]storage.Result // Level number to best result
	stats       *storage.SetStats
	loadErr     string
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	standalone  bool // Quit the program on back
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool // Whether to show set list sidebar
}

// NewResultsModel creates a results view, starting on setID when it is
// registered.
func NewResultsModel(store *storage.Store, width, height int, setID string) ResultsModel {
	keys := DefaultScoreboardKeyMap()
	h := help.New()
	h.ShowAll = false

	m := ResultsModel{
		sets:        registry.List(),
		store:       store,
		keys:        keys,
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	for i, s := range m.sets {
		if s.ID == setID {
			m.setCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.sets) > 0 {
		m.loadResults(m.sets[m.setCursor].ID)
	}

	return m
}

// createTable creates a new table with appropriate columns.
func (m *ResultsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Level", Width: 6},
		{Title: "Name", Width: 14},
		{Title: "Best", Width: 5},
		{Title: "Time", Width: 8},
		{Title: "Player", Width: 10},
		{Title: "Date", Width: 12},
	}

	// Calculate available width for table
	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}

	// Give the name column any spare space
	fixed := 0
	for _, c := range columns {
		fixed += c.Width + 2
	}
	if spare := tableWidth - fixed; spare > 0 {
		columns[1].Width += min(spare, 16)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, stats, help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadResults loads the best result per level for the given set.
func (m *ResultsModel) loadResults(setID string) {
	m.best = make(map[int]storage.Result)
	m.stats = nil
	m.loadErr = ""

	set, err := registry.Open(setID)
	if err != nil {
		m.set = nil
		m.loadErr = err.Error()
		m.updateTableRows()
		return
	}
	m.set = set

	if m.store != nil {
		for _, lvl := range set.Levels() {
			results, err := m.store.BestResults(setID, lvl.Level, 1)
			if err != nil {
				m.loadErr = err.Error()
				break
			}
			if len(results) > 0 {
				m.best[lvl.Level] = results[0]
			}
		}
		if stats, err := m.store.GetSetStats(setID); err == nil {
			m.stats = stats
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the current set's levels.
func (m *ResultsModel) updateTableRows() {
	var rows []table.Row
	if m.set != nil {
		for _, lvl := range m.set.Levels() {
			row := table.Row{fmt.Sprintf("%d", lvl.Level), lvl.Name, "-", "-", "-", "-"}
			if r, ok := m.best[lvl.Level]; ok {
				row[2] = fmt.Sprintf("%d", r.Moves)
				row[3] = r.Duration.Round(time.Second).String()
				row[4] = r.Player
				row[5] = r.CreatedAt.Format("Jan 02 15:04")
			}
			rows = append(rows, row)
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init initializes the results model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results view.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.NextSet), key.Matches(msg, m.keys.Right):
			if len(m.sets) > 0 {
				m.setCursor = (m.setCursor + 1) % len(m.sets)
				m.loadResults(m.sets[m.setCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevSet), key.Matches(msg, m.keys.Left):
			if len(m.sets) > 0 {
				m.setCursor--
				if m.setCursor < 0 {
					m.setCursor = len(m.sets) - 1
				}
				m.loadResults(m.sets[m.setCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results view.
func (m ResultsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "RESULTS"
	if len(m.sets) > 0 {
		title = fmt.Sprintf("RESULTS - %s", m.sets[m.setCursor].Title)
	}

	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.statsLine(), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		// Wide layout: sidebar + table
		b.WriteString(m.renderWideLayout())
	} else {
		// Narrow layout: set tabs + table
		b.WriteString(m.renderNarrowLayout())
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the results with a sidebar for set selection.
func (m ResultsModel) renderWideLayout() string {
	// Sidebar (set list)
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Sets\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, info := range m.sets {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.setCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := info.Title
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	sidebarRendered := sidebarStyle.Render(sidebar.String())

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	tableContent := m.renderTableContent()
	tableRendered := tableStyle.Render(tableContent)

	// Join horizontally
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarRendered, "  ", tableRendered)
}

// renderNarrowLayout renders the results with set tabs above the table.
func (m ResultsModel) renderNarrowLayout() string {
	var b strings.Builder

	// Set tabs (horizontal)
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.sets))
	for i, info := range m.sets {
		shortName := info.Title
		if len(shortName) > 10 {
			shortName = shortName[:9] + "."
		}
		if i == m.setCursor {
			tabs[i] = activeTabStyle.Render(shortName)
		} else {
			tabs[i] = tabStyle.Render(" " + shortName + " ")
		}
	}

	// Wrap tabs if needed
	tabLine := strings.Join(tabs, " ")
	if lipgloss.Width(tabLine) > m.width-4 && len(m.sets) > 0 {
		// Just show current set with arrows
		current := m.sets[m.setCursor].Title
		tabLine = fmt.Sprintf("< %s >", current)
	}
	b.WriteString(centerText(tabLine, m.width))
	b.WriteString("\n\n")

	// Table
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ResultsModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	if m.loadErr != "" {
		return emptyStyle.Render(m.loadErr)
	}
	if len(m.best) == 0 {
		return emptyStyle.Render("No levels solved yet.\nSolve one to see it here!")
	}

	return m.table.View()
}

func (m ResultsModel) statsLine() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	if m.stats == nil || m.stats.Plays == 0 || m.set == nil {
		return style.Render("Not played yet")
	}
	return style.Render(fmt.Sprintf("Solved %d/%d  |  Plays %d  |  Avg moves %.1f  |  Last %s",
		m.stats.Solved, len(m.set.Levels()), m.stats.Plays, m.stats.AvgMoves,
		m.stats.LastPlayed.Format("Jan 02 15:04")))
}

// Back clears the back flag so the view can be shown again.
func (m ResultsModel) Back() ResultsModel {
	m.goingBack = false
	return m
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ResultsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ResultsModel) IsQuitting() bool {
	return m.quitting
}

// RunResults runs the results screen on its own.
// Returns true if user pressed back, false if quitting.
func RunResults(store *storage.Store, width, height int, setID string) (goBack bool, err error) {
	model := NewResultsModel(store, width, height, setID)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(ResultsModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
