package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
	"github.com/vovakirdan/racer/internal/evolve"
	"github.com/vovakirdan/racer/internal/games/racing"
)

// statusRows is the space under the playfield used by the watch view.
const statusRows = 2

// recentReports is how many generation summaries the watch view keeps.
const recentReports = 5

// FrameMsg carries one world snapshot to the viewer.
type FrameMsg racing.Frame

// ReportMsg summarizes a finished generation.
type ReportMsg struct {
	Generation int
	Best       float64
	Mean       float64
	Score      int
	Ticks      int
	Reason     string
	Nodes      int
	Genes      int
}

// trainingDoneMsg is sent when the training function returns.
type trainingDoneMsg struct{ err error }

// Watcher feeds a running training session into a watch program.
// It implements racing.Observer and evolve.Reporter.
type Watcher struct {
	send     func(tea.Msg)
	ctx      context.Context
	interval time.Duration
	fast     atomic.Bool
}

// Observe forwards f to the viewer and holds the simulation for one frame.
func (w *Watcher) Observe(f racing.Frame) {
	w.send(FrameMsg(f))
	if w.fast.Load() {
		return
	}

	t := time.NewTimer(w.interval)
	defer t.Stop()
	select {
	case <-t.C:
	case <-w.ctx.Done():
	}
}

// Report forwards a generation summary to the viewer.
func (w *Watcher) Report(r evolve.Report) error {
	w.send(ReportMsg{
		Generation: r.Generation,
		Best:       r.Summary.Best,
		Mean:       r.Summary.Mean,
		Score:      r.Result.Score,
		Ticks:      r.Result.Ticks,
		Reason:     r.Result.Reason.String(),
		Nodes:      r.Nodes,
		Genes:      r.Genes,
	})
	return nil
}

// ToggleFast switches between paced and unpaced simulation.
func (w *Watcher) ToggleFast() bool {
	fast := !w.fast.Load()
	w.fast.Store(fast)
	return fast
}

// WatchModel renders frames from a running training session.
type WatchModel struct {
	cfg      *config.RacingConfig
	sprites  *racing.Sprites
	watcher  *Watcher
	cancel   context.CancelFunc
	screen   *core.Screen
	frame    racing.Frame
	seen     bool
	recent   []ReportMsg
	done     bool
	err      error
	quitting bool
}

// NewWatchModel creates a viewer for worlds built from cfg.
func NewWatchModel(cfg *config.RacingConfig, sprites *racing.Sprites, w *Watcher, cancel context.CancelFunc, width, height int) WatchModel {
	return WatchModel{
		cfg:     cfg,
		sprites: sprites,
		watcher: w,
		cancel:  cancel,
		screen:  core.NewScreen(width, max(height-statusRows, 1)),
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "f":
			if m.watcher != nil {
				m.watcher.ToggleFast()
			}
		}

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, max(msg.Height-statusRows, 1))

	case FrameMsg:
		m.frame = racing.Frame(msg)
		m.seen = true

	case ReportMsg:
		m.recent = append(m.recent, msg)
		if len(m.recent) > recentReports {
			m.recent = m.recent[len(m.recent)-recentReports:]
		}

	case trainingDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	if m.seen {
		racing.RenderFrame(m.screen, m.frame, m.cfg, m.sprites)
	} else {
		msg := "waiting for the first generation..."
		m.screen.DrawTextColored(max((m.screen.Width()-len(msg))/2, 0), m.screen.Height()/2, msg, core.ColorGray)
	}

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("q: stop training  f: toggle fast-forward"))
	return b.String()
}

func (m WatchModel) statusLine() string {
	if len(m.recent) == 0 {
		return mutedStyle.Render("no finished generations yet")
	}
	last := m.recent[len(m.recent)-1]
	line := fmt.Sprintf("gen %d  best %.2f  mean %.2f  score %d  ticks %d  (%s)  nodes %d genes %d",
		last.Generation, last.Best, last.Mean, last.Score, last.Ticks, last.Reason, last.Nodes, last.Genes)
	return accentStyle.Render(line)
}

// Recent returns the generation summaries the view currently holds.
func (m WatchModel) Recent() []ReportMsg {
	return m.recent
}

// TrainFunc runs a training session, drawing through w.
type TrainFunc func(ctx context.Context, w *Watcher) error

// WatchOptions configures Watch.
type WatchOptions struct {
	Config  *config.RacingConfig
	Sprites *racing.Sprites
	FPS     int
	Width   int
	Height  int
}

// Watch runs train while showing its worlds in the terminal.
// Quitting the viewer cancels the context passed to train.
func Watch(ctx context.Context, opts WatchOptions, train TrainFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &Watcher{ctx: ctx, interval: tickInterval(opts.FPS)}
	model := NewWatchModel(opts.Config, opts.Sprites, w, cancel, opts.Width, opts.Height)
	p := tea.NewProgram(model, tea.WithAltScreen())
	w.send = p.Send

	errc := make(chan error, 1)
	go func() {
		err := train(ctx, w)
		errc <- err
		p.Send(trainingDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return err
	}
	cancel()
	return <-errc
}
