package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight[int]
	var runs atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("tournament-1", func() (int, error) {
				runs.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
}

func TestSingleFlight_SequentialCallsRunAgain(t *testing.T) {
	var g SingleFlight[string]
	calls := 0
	for i := 0; i < 3; i++ {
		_, _, shared := g.Do("k", func() (string, error) {
			calls++
			return "ok", nil
		})
		assert.False(t, shared)
	}
	assert.Equal(t, 3, calls)
}
