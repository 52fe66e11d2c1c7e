package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsInOrder(t *testing.T) {
	l := New(16)
	go l.Run(context.Background())
	defer l.Close()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Call(context.Background(), func() {}))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoopSerialisesConcurrentPosts(t *testing.T) {
	l := New(4)
	go l.Run(context.Background())
	defer l.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Call(context.Background(), func() { counter++ })
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestCallAfterClose(t *testing.T) {
	l := New(1)
	l.Close()

	err := l.Call(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NotPanics(t, func() { l.Post(func() {}) })
}

func TestRunStopsWithContext(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	<-l.Done()
}

func TestImmediate(t *testing.T) {
	ran := false
	Immediate.Post(func() { ran = true })
	assert.True(t, ran)
}

func TestDeferRunsAfterCurrentTaskInOrder(t *testing.T) {
	l := New(4)
	go l.Run(context.Background())
	defer l.Close()

	var got []string
	l.Post(func() {
		got = append(got, "task")
		l.Defer(func() { got = append(got, "a") })
		l.Defer(func() {
			got = append(got, "b")
			l.Defer(func() { got = append(got, "c") })
		})
	})
	l.Post(func() { got = append(got, "next") })
	require.NoError(t, l.Call(context.Background(), func() {}))

	assert.Equal(t, []string{"task", "a", "b", "c", "next"}, got)
}

func TestDeferDoesNotBlockOnFullQueue(t *testing.T) {
	l := New(1)
	go l.Run(context.Background())
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ran := false
	err := l.Call(ctx, func() {
		l.queue <- func() {}
		l.Defer(func() { ran = true })
	})
	require.NoError(t, err)
	require.NoError(t, l.Call(ctx, func() {}))
	assert.True(t, ran)
}
