package world

import (
	"context"
	"encoding/hex"
	"time"

	"terrastream.world/internal/sim/geom"
)

// Run drives the controlling loop until the context is cancelled or Stop
// is called. Viewer positions and observer churn are absorbed between
// ticks; all registry mutation happens inside step, on this goroutine.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer w.sched.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case p := <-w.pos:
			w.viewer = p // last write before the tick wins
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			delete(w.observers, id)
		case <-ticker.C:
			w.step()
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) step() (shown, hidden []geom.IVec2) {
	start := time.Now()
	tick := w.tick.Add(1)

	// Apply discovery requests accumulated since the last tick.
	for {
		select {
		case d := <-w.discover:
			w.stream.Discover(w.reg, d.Pos, d.Radius)
			continue
		default:
		}
		break
	}

	// Merge finished generation first so this tick's streaming pass can
	// show chunks that completed since the last one.
	installs := w.sched.Drain(w.reg)
	shown, hidden = w.stream.Tick(w.reg, w.viewer)
	w.sched.Dispatch(w.reg)

	for _, coord := range shown {
		ch, _ := w.reg.Get(coord)
		w.broadcast(showEvent(ch))
	}
	for _, coord := range hidden {
		w.broadcast(Event{Kind: EventChunkHide, Coord: coord})
	}

	if w.index != nil {
		for _, in := range installs {
			w.index.RecordGeneration(tick, in.Coord, in.Phase, in.Elapsed, hex.EncodeToString(in.Digest[:]))
		}
	}

	w.statChunks.Store(int64(w.reg.Len()))
	w.statVisible.Store(int64(len(w.reg.visible)))
	w.statStepUS.Store(time.Since(start).Microseconds())
	return shown, hidden
}

// StepOnce advances the world a single tick with the given viewer
// position, for deterministic tests and offline tools. Must not be mixed
// with a live Run on another goroutine.
func (w *World) StepOnce(viewer geom.Vec2) (shown, hidden []geom.IVec2) {
	w.viewer = viewer
	return w.step()
}

// CloseScheduler releases the worker pool when the world is used without
// Run (StepOnce-driven tests and tools).
func (w *World) CloseScheduler() { w.sched.Close() }
