package world

import (
	"sync"
	"time"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
)

// Install describes one completed merge, for logging and the generation
// index.
type Install struct {
	Coord   geom.IVec2
	Phase   string // "tiles" or "resources"
	Elapsed time.Duration
	Digest  [32]byte
}

type tileResult struct {
	coord   geom.IVec2
	tiles   []gen.TileKind
	elapsed time.Duration
}

type resourceResult struct {
	coord     geom.IVec2
	resources []gen.ResourceKind
	elapsed   time.Duration
}

// Scheduler drives the two-phase generation pipeline. Work units are
// pure closures over values (chunk coordinate, seed, config); workers
// never touch the registry. Results come back over channels and are
// merged on the controlling loop only.
type Scheduler struct {
	seed uint64
	grid geom.Grid
	cfg  gen.Config

	jobs      chan func()
	tileDone  chan tileResult
	resDone   chan resourceResult
	closeOnce sync.Once

	// Stats, controller loop only.
	tilesDispatched     int
	resourcesDispatched int
}

// NewScheduler starts a fixed pool of workers. Result channels are sized
// to hold every possible in-flight result (queue plus one per worker),
// so a worker can never block handing a result back.
func NewScheduler(seed uint64, grid geom.Grid, cfg gen.Config, workers, queue int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if queue < 1 {
		queue = 1
	}
	s := &Scheduler{
		seed:     seed,
		grid:     grid,
		cfg:      cfg,
		jobs:     make(chan func(), queue),
		tileDone: make(chan tileResult, queue+workers),
		resDone:  make(chan resourceResult, queue+workers),
	}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range s.jobs {
				job()
			}
		}()
	}
	return s
}

// Close stops the workers once queued jobs drain. Results left in the
// done channels are simply never merged; chunks are regenerated from the
// seed next run, so nothing is lost. Safe to call more than once.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.jobs) })
}

// Drain merges every completed result into the registry. Runs on the
// controlling loop; applies at most one state transition per chunk per
// pass, because each chunk has at most one job in flight.
func (s *Scheduler) Drain(reg *Registry) []Install {
	var installs []Install
	for {
		select {
		case res := <-s.tileDone:
			ch := reg.InstallTiles(res.coord, res.tiles)
			installs = append(installs, Install{Coord: res.coord, Phase: "tiles", Elapsed: res.elapsed, Digest: ch.TileDigest})
		case res := <-s.resDone:
			ch := reg.InstallResources(res.coord, res.resources)
			installs = append(installs, Install{Coord: res.coord, Phase: "resources", Elapsed: res.elapsed, Digest: ch.ResourceDigest})
		default:
			return installs
		}
	}
}

// Dispatch scans the registry in deterministic order and hands
// generation work to the pool. The pending-state transition happens only
// on a successful enqueue, so a chunk is never dispatched twice; a full
// queue just defers the chunk to a later tick. Never blocks.
func (s *Scheduler) Dispatch(reg *Registry) {
	for _, coord := range reg.Coords() {
		ch, _ := reg.Get(coord)
		switch ch.State {
		case StateSpawned:
			if s.dispatchTiles(coord) {
				reg.BeginTiles(coord)
			}
		case StateTileReady:
			if s.dispatchResources(coord, ch.Tiles) {
				reg.BeginResources(coord)
			}
		}
	}
}

func (s *Scheduler) dispatchTiles(coord geom.IVec2) bool {
	seed, grid, cfg := s.seed, s.grid, s.cfg
	job := func() {
		start := time.Now()
		tiles := gen.GenerateTiles(seed, coord, grid, cfg)
		s.tileDone <- tileResult{coord: coord, tiles: tiles, elapsed: time.Since(start)}
	}
	select {
	case s.jobs <- job:
		s.tilesDispatched++
		return true
	default:
		return false
	}
}

// dispatchResources captures the installed tile array. The array is
// immutable after install, so sharing it with the worker is safe.
func (s *Scheduler) dispatchResources(coord geom.IVec2, tiles []gen.TileKind) bool {
	seed, grid, cfg := s.seed, s.grid, s.cfg
	job := func() {
		start := time.Now()
		resources := gen.GenerateResources(seed, coord, grid, cfg, tiles)
		s.resDone <- resourceResult{coord: coord, resources: resources, elapsed: time.Since(start)}
	}
	select {
	case s.jobs <- job:
		s.resourcesDispatched++
		return true
	default:
		return false
	}
}

// Dispatched returns how many tile and resource jobs have been enqueued
// since start. Each chunk contributes at most one of each.
func (s *Scheduler) Dispatched() (tiles, resources int) {
	return s.tilesDispatched, s.resourcesDispatched
}
