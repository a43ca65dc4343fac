package world

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
)

// Config is fixed at process start; the world is a pure function of the
// seed and this configuration, regenerated identically every run.
type Config struct {
	ID         string
	Seed       uint64
	TickRateHz int

	Grid        geom.Grid
	SpawnRadius int // chunks eagerly created around the viewer
	LoadRadius  int // chunks actually shown; < SpawnRadius

	Workers   int // generation worker goroutines
	QueueSize int // generation job queue capacity

	Gen gen.Config
}

func (c Config) Validate() error {
	if c.TickRateHz < 1 {
		return fmt.Errorf("tick rate must be >= 1, got %d", c.TickRateHz)
	}
	if c.Grid.ChunkSize.X < 1 || c.Grid.ChunkSize.Y < 1 {
		return fmt.Errorf("chunk size must be positive, got %v", c.Grid.ChunkSize)
	}
	if c.Grid.TileSize.X <= 0 || c.Grid.TileSize.Y <= 0 {
		return fmt.Errorf("tile size must be positive, got %v", c.Grid.TileSize)
	}
	if c.SpawnRadius < 1 {
		return fmt.Errorf("spawn radius must be >= 1, got %d", c.SpawnRadius)
	}
	if c.LoadRadius < 0 || c.LoadRadius >= c.SpawnRadius {
		return fmt.Errorf("load radius %d must be in [0, spawn radius %d)", c.LoadRadius, c.SpawnRadius)
	}
	return c.Gen.Validate()
}

// EventKind distinguishes observer notifications.
type EventKind uint8

const (
	EventChunkShow EventKind = iota
	EventChunkHide
)

// Event is a visibility notification pushed to observers. Show events
// carry the chunk's arrays; they are installed-once and never mutated,
// so observers may read them without copying.
type Event struct {
	Kind           EventKind
	Coord          geom.IVec2
	Tiles          []gen.TileKind
	Resources      []gen.ResourceKind
	TileDigest     [32]byte
	ResourceDigest [32]byte
}

// showEvent builds a show notification for an installed chunk.
func showEvent(ch *Chunk) Event {
	return Event{
		Kind:           EventChunkShow,
		Coord:          ch.Coord,
		Tiles:          ch.Tiles,
		Resources:      ch.Resources,
		TileDigest:     ch.TileDigest,
		ResourceDigest: ch.ResourceDigest,
	}
}

// Discover asks the world to spawn chunks around a position that is not
// the viewer. Chunks created this way generate normally but stay hidden.
type Discover struct {
	Pos    geom.Vec2
	Radius int
}

// ObserverJoin registers an event sink. Out must be buffered generously
// enough to absorb the initial burst of already-visible chunks; a sink
// that stops draining is dropped.
type ObserverJoin struct {
	ID  string
	Out chan<- Event
}

// Recorder receives generation telemetry. Implementations must never
// block the caller; the world loop treats this as fire-and-forget.
type Recorder interface {
	RecordGeneration(tick uint64, coord geom.IVec2, phase string, elapsed time.Duration, digest string)
}

// World owns the registry, scheduler and streamer, and runs the single
// controlling loop all mutations go through.
type World struct {
	cfg   Config
	log   *log.Logger
	index Recorder

	reg    *Registry
	sched  *Scheduler
	stream *Streamer

	viewer geom.Vec2
	tick   atomic.Uint64

	// Gauges, readable from any goroutine.
	statChunks  atomic.Int64
	statVisible atomic.Int64
	statStepUS  atomic.Int64

	pos           chan geom.Vec2
	discover      chan Discover
	observerJoin  chan ObserverJoin
	observerLeave chan string
	stop          chan struct{}

	// Loop-owned.
	observers map[string]chan<- Event
}

// New builds a world. index may be nil.
func New(cfg Config, logger *log.Logger, index Recorder) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &World{
		cfg:           cfg,
		log:           logger,
		index:         index,
		reg:           NewRegistry(cfg.Grid),
		sched:         NewScheduler(cfg.Seed, cfg.Grid, cfg.Gen, cfg.Workers, cfg.QueueSize),
		stream:        NewStreamer(cfg.Grid, cfg.SpawnRadius, cfg.LoadRadius),
		pos:           make(chan geom.Vec2, 16),
		discover:      make(chan Discover, 16),
		observerJoin:  make(chan ObserverJoin, 4),
		observerLeave: make(chan string, 4),
		stop:          make(chan struct{}),
		observers:     map[string]chan<- Event{},
	}, nil
}

// Metrics is a point-in-time snapshot of world gauges.
type Metrics struct {
	Tick    uint64
	Chunks  int64
	Visible int64
	StepMS  float64
}

func (w *World) Metrics() Metrics {
	return Metrics{
		Tick:    w.tick.Load(),
		Chunks:  w.statChunks.Load(),
		Visible: w.statVisible.Load(),
		StepMS:  float64(w.statStepUS.Load()) / 1000.0,
	}
}

func (w *World) Config() Config { return w.cfg }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) PosInbox() chan<- geom.Vec2 { return w.pos }

func (w *World) DiscoverInbox() chan<- Discover { return w.discover }

func (w *World) ObserverJoin() chan<- ObserverJoin { return w.observerJoin }

func (w *World) ObserverLeave() chan<- string { return w.observerLeave }

// Registry exposes the chunk table for same-goroutine consumers (tests,
// offline tools). Not safe to call while Run is live on another
// goroutine.
func (w *World) Registry() *Registry { return w.reg }

func (w *World) handleObserverJoin(req ObserverJoin) {
	w.observers[req.ID] = req.Out
	// Replay the currently visible set so a late joiner starts complete.
	for _, coord := range w.reg.VisibleCoords() {
		ch, _ := w.reg.Get(coord)
		if !w.send(req.ID, showEvent(ch)) {
			return
		}
	}
}

func (w *World) send(id string, ev Event) bool {
	out, ok := w.observers[id]
	if !ok {
		return false
	}
	select {
	case out <- ev:
		return true
	default:
		w.log.Printf("observer %s not draining, dropping", id)
		delete(w.observers, id)
		return false
	}
}

func (w *World) broadcast(ev Event) {
	for id := range w.observers {
		w.send(id, ev)
	}
}
