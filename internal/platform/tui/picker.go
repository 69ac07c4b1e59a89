package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/engine"
	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

// PickerSelection is a level chosen in the picker.
type PickerSelection struct {
	SetID string
	Level int
}

type pickerPhase int

const (
	phaseSets pickerPhase = iota
	phaseLevels
)

// LevelPickerModel lets the player choose a level set, then a level in it.
type LevelPickerModel struct {
	phase pickerPhase

	sets      []registry.SetInfo
	setCursor int

	set         registry.Set
	levels      []engine.LevelData
	solved      map[int]int // Level number to best move count
	levelCursor int

	width     int
	height    int
	store     *storage.Store
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	theme     Theme
	err       string

	quitting       bool
	selected       *PickerSelection
	openScoreboard bool
}

// NewLevelPickerModel creates a picker. When setID names a registered set the
// picker opens directly on its levels.
func NewLevelPickerModel(store *storage.Store, cfg core.RuntimeConfig, setID string) LevelPickerModel {
	m := LevelPickerModel{
		sets:      registry.List(),
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		store:     store,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		theme:     DefaultTheme(),
	}

	for i, s := range m.sets {
		if s.ID == setID {
			m.setCursor = i
			m.openSet()
			break
		}
	}
	return m
}

// openSet switches to the level list of the set under the cursor.
func (m *LevelPickerModel) openSet() {
	if len(m.sets) == 0 {
		return
	}
	set, err := registry.Open(m.sets[m.setCursor].ID)
	if err != nil {
		m.err = err.Error()
		return
	}

	m.err = ""
	m.set = set
	m.levels = set.Levels()
	m.levelCursor = 0
	m.phase = phaseLevels
	m.loadSolved()

	// Start on the first unsolved level.
	for i, lvl := range m.levels {
		if _, ok := m.solved[lvl.Level]; !ok {
			m.levelCursor = i
			break
		}
	}
}

func (m *LevelPickerModel) loadSolved() {
	m.solved = nil
	if m.store == nil || m.set == nil {
		return
	}
	solved, err := m.store.SolvedLevels(m.set.ID())
	if err != nil {
		m.err = err.Error()
		return
	}
	m.solved = solved
}

// Refresh clears the previous selection and reloads solved marks. The session
// calls it when returning to the picker.
func (m LevelPickerModel) Refresh() LevelPickerModel {
	m.selected = nil
	m.openScoreboard = false
	m.loadSolved()
	return m
}

// Init initializes the picker model.
func (m LevelPickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m LevelPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for picker navigation.
func (m LevelPickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.phase == phaseSets {
			m.setCursor = max(m.setCursor-1, 0)
		} else {
			m.levelCursor = max(m.levelCursor-1, 0)
		}

	case MenuActionDown:
		if m.phase == phaseSets {
			m.setCursor = max(min(m.setCursor+1, len(m.sets)-1), 0)
		} else {
			m.levelCursor = max(min(m.levelCursor+1, len(m.levels)-1), 0)
		}

	case MenuActionSelect:
		if m.phase == phaseSets {
			m.openSet()
			return m, nil
		}
		if len(m.levels) > 0 {
			m.selected = &PickerSelection{
				SetID: m.set.ID(),
				Level: m.levels[m.levelCursor].Level,
			}
		}

	case MenuActionBack:
		if m.phase == phaseLevels {
			m.phase = phaseSets
			m.err = ""
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
	}

	return m, nil
}

// View renders the picker.
func (m LevelPickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("B O T T L E   S O R T"), m.width))
	b.WriteString("\n\n")

	if m.phase == phaseSets {
		m.viewSets(&b)
	} else {
		m.viewLevels(&b)
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(centerText(m.theme.StatusWarn.Render(m.err), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Esc: Back  |  Tab: Results  |  Q: Quit"
	b.WriteString(centerText(m.theme.Help.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

func (m LevelPickerModel) viewSets(b *strings.Builder) {
	b.WriteString(centerText(m.theme.MenuDescription.Render("Select a level set"), m.width))
	b.WriteString("\n\n")

	if len(m.sets) == 0 {
		b.WriteString(centerText("No level sets found.", m.width))
		b.WriteString("\n")
		return
	}

	for i, s := range m.sets {
		b.WriteString(centerText(m.item(i == m.setCursor, s.Title), m.width))
		b.WriteString("\n")
	}
}

func (m LevelPickerModel) viewLevels(b *strings.Builder) {
	b.WriteString(centerText(m.theme.MenuDescription.Render(m.set.Title()), m.width))
	b.WriteString("\n\n")

	// Scroll the list so the cursor stays visible.
	visible := max(m.height-10, 3)
	start := 0
	if m.levelCursor >= visible {
		start = m.levelCursor - visible + 1
	}
	end := min(start+visible, len(m.levels))

	for i := start; i < end; i++ {
		lvl := m.levels[i]
		label := fmt.Sprintf("Level %d", lvl.Level)
		if lvl.Name != "" {
			label += "  " + lvl.Name
		}
		line := m.item(i == m.levelCursor, label)
		if best, ok := m.solved[lvl.Level]; ok {
			line += m.theme.MenuSolved.Render(fmt.Sprintf("  * %d moves", best))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
}

func (m LevelPickerModel) item(active bool, label string) string {
	if active {
		return m.theme.MenuItemActive.Render("> " + label)
	}
	return m.theme.MenuItemNormal.Render("  " + label)
}

// Selected returns the selected level, or nil if none selected.
func (m LevelPickerModel) Selected() *PickerSelection {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m LevelPickerModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the results table.
func (m LevelPickerModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// CurrentSet returns the ID of the set under the cursor.
func (m LevelPickerModel) CurrentSet() string {
	if m.phase == phaseLevels && m.set != nil {
		return m.set.ID()
	}
	if len(m.sets) == 0 {
		return ""
	}
	return m.sets[m.setCursor].ID
}

// Config returns the current runtime config (may have been updated by resize).
func (m LevelPickerModel) Config() core.RuntimeConfig {
	return m.config
}
