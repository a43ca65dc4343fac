// Package indexdb is an optional sqlite read-model of generation
// telemetry. It records when each chunk's phases completed and their
// array digests, for offline inspection. The sim never reads it back, so
// it cannot affect determinism; chunk data itself is never stored.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"terrastream.world/internal/sim/geom"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan row
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type row struct {
	Tick    uint64
	CX, CY  int
	Phase   string
	Elapsed time.Duration
	Digest  string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Generation is bursty when the viewer moves; buffer a few spawn
		// squares worth of installs.
		ch: make(chan row, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunk_generation (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			phase TEXT NOT NULL,
			tick INTEGER NOT NULL,
			elapsed_us INTEGER NOT NULL,
			digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (cx, cy, phase)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_generation_tick ON chunk_generation(tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordGeneration never blocks the world loop; rows are dropped if the
// indexer falls behind. Chunks are regenerated from the seed anyway, so a
// gap in the index loses nothing authoritative.
func (s *SQLiteIndex) RecordGeneration(tick uint64, coord geom.IVec2, phase string, elapsed time.Duration, digest string) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- row{Tick: tick, CX: coord.X, CY: coord.Y, Phase: phase, Elapsed: elapsed, Digest: digest}:
	default:
	}
}

// PhaseStats summarizes recorded generation work for one phase.
type PhaseStats struct {
	Phase     string
	Chunks    int
	AvgMicros int64
}

func (s *SQLiteIndex) Stats() ([]PhaseStats, error) {
	rows, err := s.db.Query(`SELECT phase, COUNT(*), CAST(AVG(elapsed_us) AS INTEGER) FROM chunk_generation GROUP BY phase ORDER BY phase`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PhaseStats
	for rows.Next() {
		var st PhaseStats
		if err := rows.Scan(&st.Phase, &st.Chunks, &st.AvgMicros); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	insert, err := s.db.Prepare(`INSERT OR REPLACE INTO chunk_generation(cx,cy,phase,tick,elapsed_us,digest,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		for range s.ch {
		}
		return
	}
	defer insert.Close()

	var (
		tx          *sql.Tx
		opCount     int
		lastCommit  = time.Now()
		commitEvery = 512
		commitWait  = time.Second
	)

	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if tx == nil {
			txx, err := s.db.Begin()
			if err != nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			tx = txx
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.Stmt(insert).Exec(r.CX, r.CY, r.Phase, int64(r.Tick), r.Elapsed.Microseconds(), r.Digest, now); err != nil {
			_ = tx.Rollback()
			tx = nil
			opCount = 0
			continue
		}
		opCount++
		if opCount >= commitEvery || time.Since(lastCommit) >= commitWait {
			commit()
		}
	}
	commit()
}
