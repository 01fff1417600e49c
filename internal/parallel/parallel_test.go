package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForVisitsEveryIndex(t *testing.T) {
	const n = 10_000
	seen := make([]int32, n)
	For(Config{Enabled: true, NumWorkers: 8, MinChunkSize: 16}, n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, count := range seen {
		if count != 1 {
			t.Fatalf("index %d visited %d times", i, count)
		}
	}
}

func TestForSerialWhenDisabled(t *testing.T) {
	sum := 0
	For(SerialConfig(), 100, func(i int) { sum += i })
	assert.Equal(t, 4950, sum)
}

func TestForBatchCoversRange(t *testing.T) {
	var total int64
	ForBatch(Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}, 1000, func(start, end int) {
		atomic.AddInt64(&total, int64(end-start))
	})
	assert.Equal(t, int64(1000), total)
}

func TestForBatchEmptyRange(t *testing.T) {
	called := false
	ForBatch(DefaultConfig(), 0, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestSmallRangeRunsSerially(t *testing.T) {
	// Below NumWorkers*MinChunkSize the loop must stay on one goroutine,
	// so unsynchronized writes are safe.
	sum := 0
	For(DefaultConfig(), 512, func(i int) { sum++ })
	assert.Equal(t, 512, sum)
}
