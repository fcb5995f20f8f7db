package dispatch

import "math"

// The Worker interface is implemented by the executor's workers and
// exposes the information schedulers need for splitting a grid.
type Worker interface {
	// Get worker id.
	Id() string

	// Get the worker's computation speed estimate compared to a baseline.
	SpeedEstimate() float32

	// Retrieve last block statistics.
	Stats() *Stats
}

// Worker statistics.
type Stats struct {
	// The number of grid rows processed in the last block.
	BlockH uint32

	// The time for processing the last block (in nanoseconds).
	BlockTime int64
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split grid rows into blocks of variable height and assign them to
	// the pool of workers. Returns the row count assigned to each worker.
	Schedule(workers []Worker, rows uint32) []uint32
}

// The naive scheduler splits rows proportionally to each worker's speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(workers []Worker, rows uint32) []uint32 {
	weights := make([]float64, len(workers))
	for idx, w := range workers {
		weights[idx] = float64(w.SpeedEstimate())
	}
	return distribute(weights, rows)
}

// The perfect scheduler assumes that the per-row cost between two
// subsequent dispatches is approximately the same.
type perfectScheduler struct {
	fallback naiveScheduler
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split rows using the throughput each worker achieved on its last block:
// w_i = (blockH_i / time_i) / Σ(blockH_j / time_j)
//
// Until every worker has reported timings the scheduler behaves like the
// naive scheduler.
func (sch *perfectScheduler) Schedule(workers []Worker, rows uint32) []uint32 {
	weights := make([]float64, len(workers))
	for idx, w := range workers {
		stats := w.Stats()
		if stats == nil || stats.BlockH == 0 || stats.BlockTime <= 0 {
			return sch.fallback.Schedule(workers, rows)
		}
		weights[idx] = float64(stats.BlockH) / float64(stats.BlockTime)
	}
	return distribute(weights, rows)
}

// Split rows proportionally to weights. Rows lost to rounding are assigned
// to the first worker.
func distribute(weights []float64, rows uint32) []uint32 {
	out := make([]uint32, len(weights))
	if len(out) == 0 {
		return out
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(len(weights))
	}

	scaler := float64(rows) / total
	var scheduledRows uint32
	for idx, w := range weights {
		out[idx] = uint32(math.Floor(w * scaler))
		if scheduledRows+out[idx] > rows {
			out[idx] = rows - scheduledRows
		}
		scheduledRows += out[idx]
	}

	out[0] += rows - scheduledRows
	return out
}
