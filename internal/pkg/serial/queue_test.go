package serial

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_RunsJobsOneAtATime(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var (
		active, maxActive int
		mu                sync.Mutex
		wg                sync.WaitGroup
		total             int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				total++

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Equal(t, 50, total)
}

func TestQueue_ReturnsJobError(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	boom := errors.New("boom")
	assert.ErrorIs(t, q.Do(context.Background(), func() error { return boom }), boom)
}

func TestQueue_RecoversPanic(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	err := q.Do(context.Background(), func() error { panic("bad job") })
	assert.ErrorContains(t, err, "bad job")

	assert.NoError(t, q.Do(context.Background(), func() error { return nil }), "queue keeps working")
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Close()

	err := q.Do(context.Background(), func() error {
		t.Fatal("job must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueue_ContextCancelledWhileWaiting(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = q.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
}
