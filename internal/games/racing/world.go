package racing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/racer/internal/config"
)

// GapSource draws the gap top for each new wall.
type GapSource func() float64

// RandomGaps returns a GapSource drawing integers uniformly from [min, max).
// A zero seed draws from a time-seeded source.
func RandomGaps(min, max int, seed int64) GapSource {
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	span := max - min
	return func() float64 {
		if span <= 0 {
			return float64(min)
		}
		return float64(min + rng.Intn(span))
	}
}

// FixedGaps returns a GapSource that always yields gapTop.
func FixedGaps(gapTop float64) GapSource {
	return func() float64 { return gapTop }
}

// World is the state of one generation: live cars, live walls, the road,
// the score and the tick counter. It is not safe for concurrent use;
// only controller calls fan out, and only inside Tick.
type World struct {
	cfg      *config.RacingConfig
	sprites  *Sprites
	gaps     GapSource
	workers  int
	entrants map[int]*Entrant

	cars  []*Car
	walls []*Wall
	road  *Road

	generation int
	score      int
	tick       int
}

// NewWorld places one car per entrant and the first wall.
// Entrant IDs must be unique and every entrant needs a controller.
func NewWorld(cfg *config.RacingConfig, sprites *Sprites, entrants []*Entrant, gaps GapSource, workers int) (*World, error) {
	w := &World{
		cfg:      cfg,
		sprites:  sprites,
		gaps:     gaps,
		workers:  workers,
		entrants: make(map[int]*Entrant, len(entrants)),
		cars:     make([]*Car, 0, len(entrants)),
		road:     NewRoad(cfg.Playfield.Boundary, cfg.Road.Width, cfg.Road.Velocity),
	}
	for _, e := range entrants {
		if e == nil {
			return nil, &StateError{Op: "nil entrant", ID: -1}
		}
		if _, dup := w.entrants[e.ID]; dup {
			return nil, &StateError{Op: "duplicate entrant", ID: e.ID}
		}
		if e.Controller == nil {
			return nil, &ControllerError{ID: e.ID, Err: fmt.Errorf("no controller")}
		}
		w.entrants[e.ID] = e
		w.cars = append(w.cars, NewCar(e.ID, cfg.Car.X, cfg.Car.Y, cfg.Car.Step))
	}
	w.walls = append(w.walls, NewWall(cfg.Walls.FirstX, gaps(), cfg.Walls.Gap, sprites))
	return w, nil
}

// Tick runs one simulation step: observe and act, advance and collide,
// detect passes, prune walls, prune out-of-bounds cars.
// An error leaves the world unusable.
func (w *World) Tick(ctx context.Context) error {
	if w.Done() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.tick++

	if err := w.act(); err != nil {
		return err
	}
	if err := w.collide(); err != nil {
		return err
	}
	if err := w.detectPasses(); err != nil {
		return err
	}
	w.walls = slices.DeleteFunc(w.walls, func(wl *Wall) bool {
		return wl.Offscreen(w.sprites)
	})
	w.pruneOutOfBounds()
	return nil
}

func (w *World) entrant(id int) (*Entrant, error) {
	e, ok := w.entrants[id]
	if !ok {
		return nil, &StateError{Op: "no entrant for car", ID: id}
	}
	return e, nil
}

// act rewards survival, queries every controller and applies the moves.
// Controller calls may run in parallel; when several fail in one tick the
// error names the first failing car in entrant order, as a sequential run would.
func (w *World) act() error {
	obs := make([]Observation, len(w.cars))
	for i, c := range w.cars {
		e, err := w.entrant(c.ID)
		if err != nil {
			return err
		}
		e.Fitness += w.cfg.Fitness.TickReward

		idx, err := TargetWall(w.walls, c.X, w.sprites)
		if err != nil {
			return err
		}
		target := w.walls[idx]
		obs[i] = Observation{c.Y, math.Abs(c.Y - target.Height), math.Abs(c.Y - target.Bottom)}
	}

	moves := make([]Move, len(w.cars))
	decide := func(i int) error {
		e := w.entrants[w.cars[i].ID]
		out, err := e.Controller.Activate(obs[i])
		if err != nil {
			return &ControllerError{ID: e.ID, Err: err}
		}
		if !usable(out) {
			return &ControllerError{ID: e.ID, Err: fmt.Errorf("non-finite output %v", out)}
		}
		moves[i] = MoveFor(out, w.cfg.Actions)
		return nil
	}

	if w.workers <= 1 || len(w.cars) == 1 {
		for i := range w.cars {
			if err := decide(i); err != nil {
				return err
			}
		}
	} else {
		errs := make([]error, len(w.cars))
		var g errgroup.Group
		g.SetLimit(w.workers)
		for i := range w.cars {
			g.Go(func() error {
				errs[i] = decide(i)
				return nil
			})
		}
		_ = g.Wait()
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}

	for i, c := range w.cars {
		c.Apply(moves[i])
	}
	return nil
}

// collide advances the scenery and removes every car that touched a wall.
// Each car is penalized at most once per tick.
func (w *World) collide() error {
	w.road.Advance()
	for _, wl := range w.walls {
		wl.Advance(w.cfg.Walls.Velocity)
	}

	for _, c := range w.cars {
		for _, wl := range w.walls {
			if !wl.Collides(c, w.sprites) {
				continue
			}
			e, err := w.entrant(c.ID)
			if err != nil {
				return err
			}
			e.Fitness -= w.cfg.Fitness.CollisionPenalty
			c.alive = false
			break
		}
	}
	w.cars = slices.DeleteFunc(w.cars, func(c *Car) bool { return !c.alive })
	return nil
}

// leader returns the live car furthest right, lowest ID on ties.
func (w *World) leader() *Car {
	var lead *Car
	for _, c := range w.cars {
		if lead == nil || c.X > lead.X || (c.X == lead.X && c.ID < lead.ID) {
			lead = c
		}
	}
	return lead
}

// detectPasses scores walls that moved behind the leading car.
// However many walls transition in one tick, the score rises by one,
// survivors get one bonus, and one new wall spawns.
func (w *World) detectPasses() error {
	lead := w.leader()
	if lead == nil {
		return nil
	}

	passed := false
	for _, wl := range w.walls {
		if wl.MarkPassed(lead.X) {
			passed = true
		}
	}
	if !passed {
		return nil
	}

	w.score++
	for _, c := range w.cars {
		e, err := w.entrant(c.ID)
		if err != nil {
			return err
		}
		e.Fitness += w.cfg.Fitness.PassBonus
	}
	w.walls = append(w.walls, NewWall(w.cfg.Walls.SpawnX, w.gaps(), w.cfg.Walls.Gap, w.sprites))
	return nil
}

// pruneOutOfBounds removes cars that drove off the top or into the road.
// Leaving the track is not penalized.
func (w *World) pruneOutOfBounds() {
	pf := w.cfg.Playfield
	h := float64(w.sprites.Car.Height())
	w.cars = slices.DeleteFunc(w.cars, func(c *Car) bool {
		if c.Y+h-pf.BottomSlack >= pf.Boundary || c.Y < pf.UpperMargin {
			c.alive = false
			return true
		}
		return false
	})
}

// Done reports whether every car has been removed.
func (w *World) Done() bool {
	return len(w.cars) == 0
}

// Score returns the number of walls passed so far.
func (w *World) Score() int {
	return w.score
}

// Ticks returns the number of completed ticks.
func (w *World) Ticks() int {
	return w.tick
}

// Alive returns the number of cars still in play.
func (w *World) Alive() int {
	return len(w.cars)
}

// Car returns the live car driven by entrant id, or nil once it is gone.
func (w *World) Car(id int) *Car {
	for _, c := range w.cars {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Walls returns the live walls, oldest first.
func (w *World) Walls() []*Wall {
	return w.walls
}
