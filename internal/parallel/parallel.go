// Package parallel provides chunked worker-pool helpers for data-parallel
// loops over tensor buffers.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls when and how loops are parallelized.
type Config struct {
	// Enabled turns parallel execution on. When false every loop runs
	// on the calling goroutine.
	Enabled bool
	// NumWorkers is the number of goroutines to fan out to. Zero means
	// runtime.NumCPU().
	NumWorkers int
	// MinChunkSize is the smallest amount of work worth handing to a
	// goroutine. Loops below NumWorkers*MinChunkSize run serially.
	MinChunkSize int
}

// DefaultConfig enables parallelism with one worker per logical CPU.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		NumWorkers:   runtime.NumCPU(),
		MinChunkSize: 1024,
	}
}

// SerialConfig disables parallelism entirely.
func SerialConfig() Config {
	return Config{Enabled: false}
}

func (c Config) workers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return runtime.NumCPU()
}

// For runs fn(i) for every i in [0, n), splitting the range across
// workers when the configuration allows it.
func For(cfg Config, n int, fn func(i int)) {
	ForBatch(cfg, n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// ForBatch runs fn(start, end) over contiguous chunks covering [0, n).
// Chunk boundaries are unspecified; fn must not assume any chunk size.
func ForBatch(cfg Config, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := cfg.workers()
	if !cfg.Enabled || workers <= 1 || n < workers*cfg.MinChunkSize {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
