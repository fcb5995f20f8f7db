package dispatch

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/emissive/log"
)

// A kernel is invoked once per grid work item. Kernels running in the same
// dispatch must only write to disjoint per-index slots.
type Kernel func(x, y uint32)

// Per-worker statistics for a single dispatch.
type WorkerStat struct {
	Id string

	// The assigned row block and the percentage of grid rows it represents.
	BlockY       uint32
	BlockH       uint32
	GridPercent  float32
	DispatchTime time.Duration
}

// Statistics for a single dispatch.
type PassStats struct {
	Name    string
	Grid    Grid
	Workers []WorkerStat

	// Wall time for the entire dispatch.
	Time time.Duration
}

type cpuWorker struct {
	id    string
	stats Stats
}

func (w *cpuWorker) Id() string {
	return w.id
}

func (w *cpuWorker) SpeedEstimate() float32 {
	return 1.0
}

func (w *cpuWorker) Stats() *Stats {
	return &w.stats
}

// The Executor runs kernels over dispatch grids using a fixed pool of
// goroutine workers. Grid rows are split into contiguous blocks by a
// BlockScheduler. Dispatch blocks until every work item has completed, so
// all writes made by a pass are visible to the next one.
type Executor struct {
	workers   []*cpuWorker
	scheduler BlockScheduler
	logger    log.Logger
}

// Create a new executor. If numWorkers is 0 or negative, GOMAXPROCS
// workers are used. A nil scheduler selects the naive scheduler.
func NewExecutor(numWorkers int, scheduler BlockScheduler) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if scheduler == nil {
		scheduler = NaiveScheduler()
	}

	e := &Executor{
		workers:   make([]*cpuWorker, numWorkers),
		scheduler: scheduler,
		logger:    log.New("dispatch"),
	}
	for idx := range e.workers {
		e.workers[idx] = &cpuWorker{id: fmt.Sprintf("worker-%02d", idx)}
	}
	return e
}

// Get the number of workers.
func (e *Executor) NumWorkers() int {
	return len(e.workers)
}

// Run kernel for every work item in grid and wait for completion.
func (e *Executor) Dispatch(name string, grid Grid, kernel Kernel) PassStats {
	stats := PassStats{Name: name, Grid: grid}
	if grid.Size() == 0 {
		return stats
	}

	start := time.Now()

	// Never schedule more workers than rows
	active := len(e.workers)
	if uint32(active) > grid.Height {
		active = int(grid.Height)
	}
	workerList := make([]Worker, active)
	for idx := 0; idx < active; idx++ {
		workerList[idx] = e.workers[idx]
	}
	blockAssignment := e.scheduler.Schedule(workerList, grid.Height)

	stats.Workers = make([]WorkerStat, active)
	var wg sync.WaitGroup
	var blockY uint32
	for idx := 0; idx < active; idx++ {
		blockH := blockAssignment[idx]
		stats.Workers[idx] = WorkerStat{
			Id:          e.workers[idx].id,
			BlockY:      blockY,
			BlockH:      blockH,
			GridPercent: 100.0 * float32(blockH) / float32(grid.Height),
		}
		if blockH == 0 {
			continue
		}

		wg.Add(1)
		go func(w *cpuWorker, stat *WorkerStat) {
			defer wg.Done()
			blockStart := time.Now()
			for y := stat.BlockY; y < stat.BlockY+stat.BlockH; y++ {
				for x := uint32(0); x < grid.Width; x++ {
					kernel(x, y)
				}
			}
			stat.DispatchTime = time.Since(blockStart)
			w.stats.BlockH = stat.BlockH
			w.stats.BlockTime = stat.DispatchTime.Nanoseconds()
		}(e.workers[idx], &stats.Workers[idx])

		blockY += blockH
	}
	wg.Wait()

	stats.Time = time.Since(start)
	e.logger.Debugf("%s: dispatched %dx%d grid on %d workers in %s", name, grid.Width, grid.Height, active, stats.Time)
	return stats
}
