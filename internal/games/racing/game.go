// Package racing simulates cars driving through gaps in scrolling walls.
//
// A World holds one generation: every entrant drives its own car, all cars
// share the same walls, and cars leave the world by touching a wall or
// driving off the track. An Evaluator runs worlds to extinction and writes
// each entrant's fitness back. Game wraps a one-car world for keyboard play.
package racing

import (
	"context"
	"fmt"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
	"github.com/vovakirdan/racer/internal/registry"
)

// Controller outputs used by keyboard play.
const (
	steerUp   = 1.0
	steerDown = -1.0
	steerHold = 0.25
)

// Entrant IDs in keyboard play.
const (
	playerID = 0
	rivalID  = 1
)

// configPath stores the custom config path set via CLI
var configPath string

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// Variant IDs registered for each difficulty preset.
var variants = map[config.Difficulty]struct{ id, title string }{
	config.DifficultyEasy:   {"racing-easy", "Wall Racer (Easy)"},
	config.DifficultyNormal: {"racing", "Wall Racer"},
	config.DifficultyHard:   {"racing-hard", "Wall Racer (Hard)"},
}

// GameID returns the registry ID of the variant for difficulty d.
func GameID(d config.Difficulty) string {
	if v, ok := variants[d]; ok {
		return v.id
	}
	return variants[config.DifficultyNormal].id
}

// Game implements keyboard play: one car steered by the player.
type Game struct {
	cfg      config.RacingConfig
	sprites  *Sprites
	world    *World
	player   *Entrant
	steer    float64 // Output the player's controller reports this tick
	gameOver bool
	paused   bool
	runtime  core.RuntimeConfig
	level    config.Difficulty
	rival    Controller // Optional computer driver sharing the walls
}

// New creates a racing game on normal difficulty.
func New() *Game {
	return NewWithDifficulty(config.DifficultyNormal)
}

// NewWithDifficulty creates a racing game using the given preset.
func NewWithDifficulty(d config.Difficulty) *Game {
	if _, ok := variants[d]; !ok {
		d = config.DifficultyNormal
	}
	return &Game{level: d}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return variants[g.level].id
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return variants[g.level].title
}

// SetRival adds a computer-driven car, typically an evolved champion, to
// every game started after the next Reset. The player still loses only
// when their own car is gone. A nil rival removes it.
func (g *Game) SetRival(c Controller) {
	g.rival = c
}

// Difficulty returns the preset this game applies on Reset.
func (g *Game) Difficulty() config.Difficulty {
	return g.level
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, err := config.LoadRacing(configPath)
	if err != nil || cfg.Validate() != nil {
		cfg = config.DefaultRacingConfig()
	}
	config.ApplyDifficulty(&cfg, g.level)
	g.cfg = cfg
	g.sprites = NewSprites(&g.cfg)

	seed := runtime.Seed
	if seed == 0 {
		seed = cfg.Walls.Seed
	}
	gaps := RandomGaps(cfg.Walls.MinGapY, cfg.Walls.MaxGapY, seed)

	g.player = &Entrant{
		ID: playerID,
		Controller: ControllerFunc(func(Observation) (float64, error) {
			return g.steer, nil
		}),
	}
	g.steer = steerHold
	g.gameOver = false
	g.paused = false

	entrants := []*Entrant{g.player}
	if g.rival != nil {
		entrants = append(entrants, &Entrant{ID: rivalID, Controller: g.rival})
	}
	g.world, err = NewWorld(&g.cfg, g.sprites, entrants, gaps, 1)
	if err != nil {
		g.gameOver = true
	}
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.gameOver {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.steer = steerUp
	case in.Has(core.ActionDown):
		g.steer = steerDown
	default:
		g.steer = steerHold
	}

	if err := g.world.Tick(context.Background()); err != nil || g.world.Car(playerID) == nil {
		g.gameOver = true
	}
	return core.StepResult{State: g.State()}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.world == nil {
		return
	}
	RenderFrame(dst, g.world.Frame(), &g.cfg, g.sprites)

	if g.paused {
		drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
	if g.gameOver {
		title := "CRASHED"
		if g.rival != nil {
			title = "CRASHED - rival out too"
			if g.world.Car(rivalID) != nil {
				title = "CRASHED - the rival drives on"
			}
		}
		drawCenteredMessage(dst, title, fmt.Sprintf("Score: %d  |  Fitness %.1f  |  Press R to restart", g.world.Score(), g.Fitness()))
	}
}

// Fitness returns what the player would have scored as an evolved controller.
func (g *Game) Fitness() float64 {
	if g.player == nil {
		return 0
	}
	return g.player.Fitness
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	score := 0
	if g.world != nil {
		score = g.world.Score()
	}
	return core.GameState{
		Score:    score,
		GameOver: g.gameOver,
		Paused:   g.paused,
	}
}

// Register one game per difficulty preset
func init() {
	for d, v := range variants {
		registry.Register(v.id, func() registry.Game {
			return NewWithDifficulty(d)
		})
	}
}
