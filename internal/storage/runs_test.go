package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	id, err := store.CreateRun(50, 10, 42, "car:\n  step: 25\n")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("Expected a UUID, got %q", id)
	}

	run, err := store.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun() failed: %v", err)
	}
	if run.ID != id || run.Status != RunRunning || run.Seed != 42 || run.Population != 50 {
		t.Errorf("Unexpected run: %+v", run)
	}
	if !run.FinishedAt.IsZero() {
		t.Error("Running run should have no finish time")
	}

	if err := store.FinishRun(id, RunFinished, 31.5, "id: 7\n"); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
	run, err = store.FindRun(id[:8])
	if err != nil {
		t.Fatalf("FindRun() failed: %v", err)
	}
	if run.Status != RunFinished || run.BestFitness != 31.5 || run.Champion != "id: 7\n" {
		t.Errorf("Run not finished correctly: %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Error("Finished run should have a finish time")
	}

	if err := store.FinishRun("missing", RunFailed, 0, ""); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestGenerations(t *testing.T) {
	store := openTestStore(t)
	id, err := store.CreateRun(10, 3, 0, "")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	for gen := 3; gen >= 1; gen-- {
		err := store.SaveGeneration(Generation{
			RunID:      id,
			Generation: gen,
			Best:       float64(gen * 10),
			Mean:       float64(gen),
			Score:      gen,
			Ticks:      gen * 100,
			BestGenome: gen,
			Reason:     "extinct",
		})
		if err != nil {
			t.Fatalf("SaveGeneration() failed: %v", err)
		}
	}
	// Replacing a generation keeps one row.
	if err := store.SaveGeneration(Generation{RunID: id, Generation: 2, Best: 99, Reason: "tick-limit"}); err != nil {
		t.Fatalf("SaveGeneration() failed: %v", err)
	}

	gens, err := store.Generations(id)
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(gens) != 3 {
		t.Fatalf("Expected 3 generations, got %d", len(gens))
	}
	for i, g := range gens {
		if g.Generation != i+1 {
			t.Errorf("Generations out of order: %d at %d", g.Generation, i)
		}
	}
	if gens[1].Best != 99 || gens[1].Reason != "tick-limit" {
		t.Errorf("Generation 2 not replaced: %+v", gens[1])
	}

	other, err := store.Generations("other")
	if err != nil || len(other) != 0 {
		t.Errorf("Expected no generations for unknown run, got %d (%v)", len(other), err)
	}
}

func TestRunsListing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LatestRun(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound on empty store, got %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.CreateRun(10+i, 5, 0, "")
		if err != nil {
			t.Fatalf("CreateRun() failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := store.Runs(2)
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs with limit, got %d", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("Newest run should come first, got population %d", runs[0].Population)
	}

	if _, err := store.FindRun("zzzz"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.FindRun(""); err == nil || errors.Is(err, ErrRunNotFound) {
		t.Errorf("Empty prefix should be ambiguous, got %v", err)
	}
}
