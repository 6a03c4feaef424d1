package racing

import (
	"strings"
	"testing"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
	"github.com/vovakirdan/racer/internal/registry"
)

func playConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 12345}
}

func TestGameDeterminism(t *testing.T) {
	inputs := make([]core.InputFrame, 300)
	for i := range inputs {
		inputs[i] = core.NewInputFrame()
		switch i % 7 {
		case 0:
			inputs[i].Set(core.ActionUp)
		case 3:
			inputs[i].Set(core.ActionDown)
		}
	}

	run := func() (core.GameState, int) {
		g := New()
		g.Reset(playConfig())
		var st core.GameState
		for _, in := range inputs {
			st = g.Step(in).State
			if st.GameOver {
				break
			}
		}
		return st, g.world.Ticks()
	}

	s1, t1 := run()
	s2, t2 := run()
	if s1 != s2 || t1 != t2 {
		t.Errorf("determinism failed: %+v@%d vs %+v@%d", s1, t1, s2, t2)
	}
}

func TestGameCrashEndsGame(t *testing.T) {
	g := New()
	g.Reset(playConfig())

	up := core.NewInputFrame()
	up.Set(core.ActionUp)
	var st core.GameState
	for range 50 {
		st = g.Step(up).State
		if st.GameOver {
			break
		}
	}
	if !st.GameOver {
		t.Fatal("driving straight up should leave the track")
	}

	ticks := g.world.Ticks()
	g.Step(up)
	if g.world.Ticks() != ticks {
		t.Error("game should not advance after game over")
	}

	g.Reset(playConfig())
	if g.State().GameOver || g.State().Score != 0 {
		t.Error("Reset should start a fresh game")
	}
}

func TestGamePause(t *testing.T) {
	g := New()
	g.Reset(playConfig())

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	if !g.Step(pause).State.Paused {
		t.Fatal("game should be paused")
	}
	for range 10 {
		g.Step(core.NewInputFrame())
	}
	if g.world.Ticks() != 0 {
		t.Errorf("paused game advanced %d ticks", g.world.Ticks())
	}
	if g.Step(pause).State.Paused {
		t.Error("second pause should resume")
	}
}

func TestGameRegistered(t *testing.T) {
	if !registry.Exists("racing") {
		t.Fatal("racing game should be registered")
	}
	g, err := registry.Create("racing")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID() != "racing" {
		t.Errorf("ID = %q", g.ID())
	}
}

func TestRender(t *testing.T) {
	g := New()
	g.Reset(playConfig())
	for range 5 {
		g.Step(core.NewInputFrame())
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()

	if !strings.Contains(out, "Score: 0") {
		t.Error("HUD should show the score")
	}
	if !strings.ContainsRune(out, CarChar) {
		t.Error("car should be drawn")
	}
	if !strings.ContainsRune(out, RoadChar) {
		t.Error("road should be drawn")
	}
}

func TestDifficultyVariants(t *testing.T) {
	tests := []struct {
		id    string
		level config.Difficulty
	}{
		{"racing", config.DifficultyNormal},
		{"racing-easy", config.DifficultyEasy},
		{"racing-hard", config.DifficultyHard},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g, err := registry.Create(tt.id)
			if err != nil {
				t.Fatalf("Create(%q): %v", tt.id, err)
			}
			rg, ok := g.(*Game)
			if !ok {
				t.Fatalf("Create(%q) returned %T", tt.id, g)
			}
			if rg.Difficulty() != tt.level {
				t.Errorf("difficulty = %q, want %q", rg.Difficulty(), tt.level)
			}
			if GameID(tt.level) != tt.id {
				t.Errorf("GameID(%q) = %q", tt.level, GameID(tt.level))
			}
		})
	}
}

func TestHardGameUsesNarrowerGap(t *testing.T) {
	normal := New()
	normal.Reset(playConfig())
	hard := NewWithDifficulty(config.DifficultyHard)
	hard.Reset(playConfig())

	if hard.cfg.Walls.Gap >= normal.cfg.Walls.Gap {
		t.Errorf("hard gap %v should be narrower than normal %v", hard.cfg.Walls.Gap, normal.cfg.Walls.Gap)
	}
}

func TestGameRival(t *testing.T) {
	g := New()
	g.SetRival(ControllerFunc(func(Observation) (float64, error) { return steerUp, nil }))
	g.Reset(playConfig())

	if g.world.Alive() != 2 {
		t.Fatalf("world should hold the player and the rival, got %d cars", g.world.Alive())
	}

	hold := core.NewInputFrame()
	for range 18 {
		g.Step(hold)
	}
	if g.world.Car(rivalID) != nil {
		t.Fatal("rival steering up should have left the track")
	}
	if g.State().GameOver || g.world.Car(playerID) == nil {
		t.Fatal("losing the rival must not end the player's game")
	}

	up := core.NewInputFrame()
	up.Set(core.ActionUp)
	for range 20 {
		if g.Step(up).State.GameOver {
			break
		}
	}
	if !g.State().GameOver {
		t.Error("player leaving the track should end the game")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "rival out too") {
		t.Error("game over message should mention the rival")
	}

	g.SetRival(nil)
	g.Reset(playConfig())
	if g.world.Alive() != 1 {
		t.Errorf("clearing the rival should leave one car, got %d", g.world.Alive())
	}
}
