package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
	"github.com/vovakirdan/racer/internal/games/racing"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 7}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{"w", runeKey('w'), core.ActionUp, false},
		{"space", runeKey(' '), core.ActionUp, false},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown, false},
		{"s", runeKey('s'), core.ActionDown, false},
		{"pause", runeKey('p'), core.ActionPause, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionPause, false},
		{"restart", runeKey('r'), core.ActionRestart, false},
		{"quit", runeKey('q'), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"unbound", runeKey('x'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.action || quit != tt.quit {
				t.Errorf("MapKey(%q) = (%v, %v), want (%v, %v)", tt.msg.String(), action, quit, tt.action, tt.quit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(tea.KeyMsg{Type: tea.KeyUp}, &frame) {
		t.Error("up should not quit")
	}
	if !frame.Has(core.ActionUp) {
		t.Error("frame should hold ActionUp")
	}
	if !km.MapKeyToFrame(runeKey('q'), &frame) {
		t.Error("q should quit")
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"flat", []float64{2, 2, 2}, 10, "▁▁▁"},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 10, "▁▂▃▄▅▆▇█"},
		{"truncated to width", []float64{9, 0, 7}, 2, "▁█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("sparkline = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlayModelSteps(t *testing.T) {
	m := NewModel(racing.New(), nil, testRuntime())

	next, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	m = next.(Model)

	next, cmd = m.Update(runeKey('q'))
	if cmd == nil || !next.(Model).quitting {
		t.Error("q should quit")
	}

	if view := m.View(); !strings.ContainsRune(view, racing.CarChar) {
		t.Error("view should draw the car")
	}
}

func TestMenuResult(t *testing.T) {
	m := NewMenuModel(nil, testRuntime())
	if len(m.items) < 4 {
		t.Fatalf("menu should list the variants plus history, got %d items", len(m.items))
	}
	if last := m.items[len(m.items)-1]; last.GameID != "" {
		t.Errorf("last item should open history, got %q", last.GameID)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	res := next.(MenuModel).result()
	if res.GameID != "racing" {
		t.Errorf("first item GameID = %q, want racing", res.GameID)
	}

	for range len(m.items) {
		next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if res := next.(MenuModel).result(); !res.WantsHistory {
		t.Errorf("last item should request history, got %+v", res)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if res := next.(MenuModel).result(); !res.WantsScoreboard {
		t.Errorf("tab should request scores, got %+v", res)
	}
}

func TestSessionFlow(t *testing.T) {
	var m tea.Model = NewSessionModel(nil, testRuntime())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if s := m.(SessionModel); s.screen != screenGame {
		t.Fatalf("enter should start a game, screen = %v", s.screen)
	}

	m, _ = m.Update(TickMsg(time.Now()))
	m, _ = m.Update(runeKey('q'))
	if s := m.(SessionModel); s.screen != screenMenu || s.closing {
		t.Fatalf("q in game should return to menu, screen = %v closing = %v", s.screen, s.closing)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if s := m.(SessionModel); s.screen != screenScores {
		t.Fatalf("tab should open scores, screen = %v", s.screen)
	}
	if view := m.View(); !strings.Contains(view, "HIGH SCORES") {
		t.Error("scores view should show its title")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if s := m.(SessionModel); s.screen != screenMenu {
		t.Fatalf("esc should return to menu, screen = %v", s.screen)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.(SessionModel).closing || cmd == nil {
		t.Error("ctrl+c should close the session")
	}
}

func testFrame(t *testing.T) (racing.Frame, *config.RacingConfig, *racing.Sprites) {
	t.Helper()
	cfg := config.DefaultRacingConfig()
	sprites := racing.NewSprites(&cfg)
	hold := racing.ControllerFunc(func(racing.Observation) (float64, error) { return 0.25, nil })
	w, err := racing.NewWorld(&cfg, sprites, []*racing.Entrant{{ID: 0, Controller: hold}}, racing.FixedGaps(300), 1)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w.Frame(), &cfg, sprites
}

func TestWatchModel(t *testing.T) {
	frame, cfg, sprites := testFrame(t)
	cancelled := false
	m := NewWatchModel(cfg, sprites, &Watcher{}, func() { cancelled = true }, 80, 24)

	if view := m.View(); !strings.Contains(view, "waiting") {
		t.Error("view should wait for the first frame")
	}

	next, _ := m.Update(FrameMsg(frame))
	m = next.(WatchModel)
	if view := m.View(); !strings.ContainsRune(view, racing.CarChar) {
		t.Error("view should draw the observed car")
	}

	for g := range recentReports + 2 {
		next, _ = m.Update(ReportMsg{Generation: g, Best: float64(g)})
		m = next.(WatchModel)
	}
	recent := m.Recent()
	if len(recent) != recentReports || recent[len(recent)-1].Generation != recentReports+1 {
		t.Errorf("recent = %+v", recent)
	}
	if view := m.View(); !strings.Contains(view, "gen 6") {
		t.Error("status line should show the latest generation")
	}

	_, cmd := m.Update(runeKey('q'))
	if !cancelled || cmd == nil {
		t.Error("q should cancel training and quit")
	}
}

func TestWatcherObserve(t *testing.T) {
	frame, _, _ := testFrame(t)
	var got []tea.Msg
	w := &Watcher{
		send:     func(msg tea.Msg) { got = append(got, msg) },
		ctx:      context.Background(),
		interval: 20 * time.Millisecond,
	}

	start := time.Now()
	w.Observe(frame)
	if time.Since(start) < w.interval {
		t.Error("paced Observe should hold for one frame")
	}

	w.ToggleFast()
	start = time.Now()
	w.Observe(frame)
	if time.Since(start) >= w.interval {
		t.Error("fast Observe should not wait")
	}
	if len(got) != 2 {
		t.Errorf("sent %d messages, want 2", len(got))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w = &Watcher{send: func(tea.Msg) {}, ctx: ctx, interval: time.Hour}
	w.Observe(frame)
}
