package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/stage"
	"github.com/vovakirdan/gridstage/internal/storage"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	logStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	overStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Model is the Bubble Tea model that runs one game's episodes: it steps
// the engine on input (or on a tick for real-time games), accumulates
// reward, and records finished episodes in the store.
type Model struct {
	info    registry.Info
	eng     *stage.Engine
	store   *storage.Store
	keys    *KeyMapper
	palette Palette
	seed    int64

	obs         stage.Observation
	totalReward float64
	steps       int
	pending     registry.Action
	logLines    []string
	stepErr     error
	finished    bool
	saved       bool
	quitting    bool
}

// NewModel creates a model and starts the first episode.
func NewModel(gameID string, store *storage.Store, seed int64) (Model, error) {
	info, ok := registry.Lookup(gameID)
	if !ok {
		return Model{}, fmt.Errorf("tui: unknown game %q", gameID)
	}
	m := Model{
		info:    info,
		store:   store,
		keys:    NewKeyMapper(),
		palette: PaletteFor(gameID),
		seed:    seed,
	}
	if err := m.startEpisode(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// startEpisode builds a fresh engine and plays its first observation.
func (m *Model) startEpisode() error {
	seed := m.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng, err := registry.Create(m.info.ID, seed)
	if err != nil {
		return err
	}
	obs, err := eng.Start()
	if err != nil {
		return err
	}
	m.eng = eng
	m.obs = obs
	m.totalReward = 0
	m.steps = 0
	m.pending = registry.ActionNone
	m.logLines = eng.Plot().ConsumeLog()
	m.stepErr = nil
	m.finished = eng.Finished()
	m.saved = false
	return nil
}

// Init starts the tick loop for real-time games.
func (m Model) Init() tea.Cmd {
	if m.info.TickMillis > 0 {
		return tickCmd(m.info.TickMillis)
	}
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.IsRestart(msg) && m.finished {
		// Fresh seed per restart unless one was pinned on the command line.
		if err := m.startEpisode(); err != nil {
			m.stepErr = err
			m.finished = true
			return m, nil
		}
		if m.info.TickMillis > 0 {
			return m, tickCmd(m.info.TickMillis)
		}
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.recordEpisode(false)
		m.quitting = true
		return m, tea.Quit
	}
	if m.finished || action == registry.ActionNone {
		return m, nil
	}

	if m.info.TickMillis > 0 {
		// Real-time games consume the latest buffered action on the tick.
		m.pending = action
		return m, nil
	}
	m.step(action)
	return m, nil
}

// handleTick advances real-time games by one step.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.info.TickMillis == 0 || m.finished || m.quitting {
		return m, nil
	}
	action := m.pending
	m.pending = registry.ActionNone
	m.step(action)
	if m.finished {
		return m, nil
	}
	return m, tickCmd(m.info.TickMillis)
}

// step advances the episode and folds in the result.
func (m *Model) step(action registry.Action) {
	obs, reward, _, err := m.eng.Step(action)
	if err != nil {
		m.stepErr = err
		m.finished = true
		return
	}
	m.obs = obs
	m.steps++
	m.totalReward += reward
	// Show this step's entity messages; keep the previous ones up on a
	// quiet step so short-lived notes stay readable.
	if msgs := m.eng.Plot().ConsumeLog(); len(msgs) > 0 {
		m.logLines = msgs
	}
	if m.eng.Finished() {
		m.finished = true
		m.recordEpisode(true)
	}
}

// recordEpisode saves the episode outcome once. Abandoned runs are saved
// with terminated=false so the scoreboard can tell them apart.
func (m *Model) recordEpisode(terminated bool) {
	if m.saved || m.store == nil || m.steps == 0 || m.stepErr != nil {
		return
	}
	//nolint:errcheck // Best-effort save, the session continues regardless
	m.store.SaveEpisode(storage.EpisodeRecord{
		GameID:      m.info.ID,
		Steps:       m.steps,
		TotalReward: m.totalReward,
		Terminated:  terminated,
	})
	m.saved = true
}

// View renders the board with its HUD.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.info.Title))
	b.WriteString("\n")
	b.WriteString(boardStyle.Render(RenderBoard(m.obs, m.palette)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("steps %d   reward %.1f", m.steps, m.totalReward)))
	b.WriteString("\n")
	for _, line := range m.logLines {
		b.WriteString(logStyle.Render(line))
		b.WriteString("\n")
	}

	switch {
	case m.stepErr != nil:
		b.WriteString(overStyle.Render(fmt.Sprintf("episode failed: %v", m.stepErr)))
		b.WriteString(statusStyle.Render("  q quit"))
	case m.finished:
		b.WriteString(overStyle.Render("episode over"))
		b.WriteString(statusStyle.Render("  r restart - q quit"))
	default:
		b.WriteString(statusStyle.Render("arrows/wasd move - space wait - q quit"))
	}
	return b.String()
}

// Run starts the Bubble Tea program for the given game.
func Run(gameID string, store *storage.Store, seed int64) error {
	model, err := NewModel(gameID, store, seed)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
