package syncutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalWaitBlocksUntilSet(t *testing.T) {
	s := NewSignal(false)
	require.False(t, s.Poll())

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Set")
	case <-time.After(20 * time.Millisecond):
	}

	s.Set()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Set")
	}
	require.True(t, s.Poll())
}

func TestSignalSetIdempotent(t *testing.T) {
	s := NewSignal(true)
	s.Set()
	require.True(t, s.Poll())
}

func TestBlockingQueueFIFO(t *testing.T) {
	q := NewBlockingQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

func TestBlockingQueuePopBlocksUntilPush(t *testing.T) {
	q := NewBlockingQueue[int]()
	result := make(chan int, 1)
	go func() {
		v, _ := q.Pop()
		result <- v
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(42)

	select {
	case v := <-result:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop never returned")
	}
}

func TestBlockingQueueCloseDrainsThenReturnsFalse(t *testing.T) {
	q := NewBlockingQueue[int]()
	q.Push(1)
	q.Close()

	v, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestSemaphoreUpDown(t *testing.T) {
	sem := NewSemaphore(0)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sem.Down()
	}()

	time.Sleep(20 * time.Millisecond)
	sem.Up()
	wg.Wait()
	require.Equal(t, 0, sem.Value())
}
