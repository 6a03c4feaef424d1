package racing

// CarView is a car's position in a Frame.
type CarView struct {
	ID   int
	X, Y float64
}

// WallView is a wall's geometry in a Frame.
type WallView struct {
	X      float64
	Top    float64
	Height float64
	Bottom float64
	Passed bool
}

// Frame is an immutable snapshot of a World taken after a tick.
type Frame struct {
	Generation int
	Tick       int
	Score      int
	Alive      int
	Target     int // Index into Walls of the leading car's target; -1 when none
	Cars       []CarView
	Walls      []WallView
	RoadY      float64
	RoadX1     float64
	RoadX2     float64
	RoadWidth  float64
}

// Observer receives a Frame once per completed tick.
// Observe runs on the simulation goroutine; a slow observer slows the run.
type Observer interface {
	Observe(f Frame)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(f Frame)

// Observe calls fn(f).
func (fn ObserverFunc) Observe(f Frame) {
	fn(f)
}

// Frame snapshots the world.
func (w *World) Frame() Frame {
	f := Frame{
		Generation: w.generation,
		Tick:       w.tick,
		Score:      w.score,
		Alive:      len(w.cars),
		Target:     -1,
		Cars:       make([]CarView, len(w.cars)),
		Walls:      make([]WallView, len(w.walls)),
		RoadY:      w.road.Y,
		RoadX1:     w.road.X1,
		RoadX2:     w.road.X2,
		RoadWidth:  w.road.Width(),
	}
	for i, c := range w.cars {
		f.Cars[i] = CarView{ID: c.ID, X: c.X, Y: c.Y}
	}
	for i, wl := range w.walls {
		f.Walls[i] = WallView{X: wl.X, Top: wl.Top, Height: wl.Height, Bottom: wl.Bottom, Passed: wl.Passed}
	}
	if lead := w.leader(); lead != nil {
		if idx, err := TargetWall(w.walls, lead.X, w.sprites); err == nil {
			f.Target = idx
		}
	}
	return f
}
