package queue_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/reactor/pkg/queue"
)

func TestLockFreeQueue(t *testing.T) {
	const taskNum = 10000
	q := queue.New[int]()
	var wg sync.WaitGroup
	wg.Add(4)
	for p := 0; p < 2; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < taskNum; i++ {
				q.Enqueue(i)
			}
		}()
	}

	var counter int32
	for c := 0; c < 2; c++ {
		go func() {
			defer wg.Done()
			for {
				_, ok := q.Dequeue()
				if ok {
					atomic.AddInt32(&counter, 1)
				}
				if !ok && atomic.LoadInt32(&counter) == 2*taskNum {
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 2*taskNum, atomic.LoadInt32(&counter))
	assert.True(t, q.IsEmpty())
	t.Logf("sent and received all %d values", 2*taskNum)
}

func TestLockFreeQueueFIFO(t *testing.T) {
	q := queue.New[string]()
	_, ok := q.Dequeue()
	require.False(t, ok, "empty queue must not yield a value")

	for _, s := range []string{"a", "b", "c"} {
		q.Enqueue(s)
	}
	require.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}
