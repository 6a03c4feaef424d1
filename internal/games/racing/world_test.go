package racing

import (
	"context"
	"testing"
)

func TestWorldCollisionPenalizedOnce(t *testing.T) {
	cfg, s := testSprites(t)
	es := entrants(1, constant(steerHold))
	w, err := NewWorld(cfg, s, es, FixedGaps(449), 1)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	// Two walls hitting the car in the same tick.
	w.walls = []*Wall{NewWall(250, 449, cfg.Walls.Gap, s), NewWall(260, 449, cfg.Walls.Gap, s)}

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !w.Done() {
		t.Fatal("car should have been removed")
	}
	if want := 0.1 - 1; !near(es[0].Fitness, want) {
		t.Errorf("Fitness = %v, want %v", es[0].Fitness, want)
	}
}

func TestWorldSpawnCadence(t *testing.T) {
	cfg, s := testSprites(t)
	w, err := NewWorld(cfg, s, entrants(3, constant(steerHold)), FixedGaps(300), 1)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	spawned := 0
	prevScore := 0
	for range 200 {
		before := len(w.Walls())
		if err := w.Tick(context.Background()); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if w.Score() < prevScore {
			t.Fatal("score decreased")
		}
		if w.Score() > prevScore {
			spawned++
			last := w.Walls()[len(w.Walls())-1]
			if last.X != cfg.Walls.SpawnX || last.Passed {
				t.Errorf("tick %d: new wall at %v passed=%v, want fresh wall at %v", w.Ticks(), last.X, last.Passed, cfg.Walls.SpawnX)
			}
		} else if len(w.Walls()) > before {
			t.Errorf("tick %d: wall spawned without a pass", w.Ticks())
		}
		prevScore = w.Score()
	}

	if spawned != w.Score() {
		t.Errorf("spawned %d walls for score %d", spawned, w.Score())
	}
	if w.Alive() != 3 {
		t.Errorf("Alive = %d, want 3", w.Alive())
	}
	for _, wl := range w.Walls() {
		if wl.Offscreen(s) {
			t.Error("offscreen wall was not pruned")
		}
	}
}

func TestWorldPassesNeedSurvivor(t *testing.T) {
	cfg, s := testSprites(t)
	es := entrants(1, constant(steerHold))
	w, err := NewWorld(cfg, s, es, FixedGaps(449), 1)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	// The wall crosses the car's X on the same tick it hits the car.
	w.walls = []*Wall{NewWall(240, 449, cfg.Walls.Gap, s)}

	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if w.Score() != 0 {
		t.Errorf("Score = %d, want 0 when no car survived", w.Score())
	}
	if w.walls[0].Passed {
		t.Error("wall should not be passed without a live car")
	}
}

func TestWorldObservation(t *testing.T) {
	cfg, s := testSprites(t)
	var got Observation
	c := ControllerFunc(func(obs Observation) (float64, error) {
		got = obs
		return steerHold, nil
	})
	w, err := NewWorld(cfg, s, []*Entrant{{ID: 7, Controller: c}}, FixedGaps(300), 1)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	want := Observation{350, 50, 150}
	if got != want {
		t.Errorf("observation = %v, want %v", got, want)
	}
}
