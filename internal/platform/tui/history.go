package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/vovakirdan/racer/internal/storage"
)

// maxRuns is how many recent runs the history browser lists.
const maxRuns = 50

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline draws the last width values as block characters scaled between their min and max.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

// HistoryModel browses stored training runs and their generations.
type HistoryModel struct {
	store     *storage.Store
	runs      []storage.Run
	runCursor int
	gens      []storage.Generation
	table     table.Model
	help      help.Model
	keys      BrowserKeyMap
	width     int
	height    int
	err       error
	quitting  bool
}

// NewHistoryModel creates a history browser. A non-empty selected ID
// (or unique prefix) starts on that run; otherwise the newest run is shown.
func NewHistoryModel(store *storage.Store, selected string, width, height int) HistoryModel {
	m := HistoryModel{
		store:  store,
		help:   help.New(),
		keys:   newBrowserKeyMap("run"),
		width:  width,
		height: height,
	}
	m.table = m.createTable()

	if store == nil {
		return m
	}
	m.runs, m.err = store.Runs(maxRuns)
	if m.err != nil {
		return m
	}
	if selected != "" {
		run, err := store.FindRun(selected)
		if err != nil {
			m.err = err
			return m
		}
		m.runCursor = m.indexOf(run)
	}
	m.loadGenerations()
	return m
}

// indexOf returns run's position in the listing, adding it if it is older than maxRuns.
func (m *HistoryModel) indexOf(run storage.Run) int {
	for i, r := range m.runs {
		if r.ID == run.ID {
			return i
		}
	}
	m.runs = append(m.runs, run)
	return len(m.runs) - 1
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Mean", Width: 9},
		{Title: "StdDev", Width: 8},
		{Title: "Median", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Ticks", Width: 7},
		{Title: "Reason", Width: 12},
	}
	return newStyledTable(columns, m.height-12)
}

func (m *HistoryModel) loadGenerations() {
	m.gens = nil
	if len(m.runs) > 0 && m.store != nil {
		gens, err := m.store.Generations(m.runs[m.runCursor].ID)
		if err != nil {
			m.err = err
		}
		m.gens = gens
	}

	rows := make([]table.Row, len(m.gens))
	for i, g := range m.gens {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%.2f", g.Best),
			fmt.Sprintf("%.2f", g.Mean),
			fmt.Sprintf("%.2f", g.StdDev),
			fmt.Sprintf("%.2f", g.Median),
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.Ticks),
			g.Reason,
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			m.runCursor = cycle(m.runCursor, 1, len(m.runs))
			m.loadGenerations()
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.runCursor = cycle(m.runCursor, -1, len(m.runs))
			m.loadGenerations()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.loadGenerations()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("TRAINING HISTORY", m.width)))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.err.Error()))
		b.WriteString("\n")
	case len(m.runs) == 0:
		b.WriteString(mutedStyle.Italic(true).Render("No training runs yet. Run `racer train` first."))
		b.WriteString("\n")
	default:
		b.WriteString(m.runHeader())
		b.WriteString("\n\n")
		b.WriteString(boxStyle.Render(m.table.View()))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// runHeader describes the selected run and plots its best fitness per generation.
func (m HistoryModel) runHeader() string {
	r := m.runs[m.runCursor]

	finished := "-"
	if !r.FinishedAt.IsZero() {
		finished = r.FinishedAt.Format("Jan 02 15:04")
	}
	head := fmt.Sprintf("run %s (%d/%d)  %s  pop %d  gens %d  seed %d  best %.2f  started %s  finished %s",
		shortID(r.ID), m.runCursor+1, len(m.runs), r.Status, r.Population, r.Generations, r.Seed,
		r.BestFitness, r.StartedAt.Format("Jan 02 15:04"), finished)

	best := make([]float64, len(m.gens))
	for i, g := range m.gens {
		best[i] = g.Best
	}
	return accentStyle.Render(head) + "\n" + mutedStyle.Render("best: ") + sparkline(best, max(m.width-8, 10))
}

// shortID trims a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunHistory runs the history browser in the local terminal.
func RunHistory(store *storage.Store, selected string, width, height int) error {
	model := NewHistoryModel(store, selected, width, height)
	if model.err != nil {
		return model.err
	}

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
