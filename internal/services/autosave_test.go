package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Two near-simultaneous first saves must produce exactly one document, with
// the second caller resolving to the id the first produced.
func TestCreateOnce_ConcurrentFirstSaves(t *testing.T) {
	saver := NewAutoSaver(DefaultAutoSaveDelay)
	var created atomic.Int32
	wantID := uuid.New()

	create := func(ctx context.Context) (uuid.UUID, error) {
		created.Add(1)
		time.Sleep(20 * time.Millisecond) // hold the create in flight
		return wantID, nil
	}

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := saver.CreateOnce(context.Background(), create)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, wantID, ids[0])
	assert.Equal(t, wantID, ids[1])
}

func TestCreateOnce_ReusesIDAfterCompletion(t *testing.T) {
	saver := NewAutoSaver(DefaultAutoSaveDelay)
	wantID := uuid.New()
	var created atomic.Int32

	create := func(ctx context.Context) (uuid.UUID, error) {
		created.Add(1)
		return wantID, nil
	}

	first, err := saver.CreateOnce(context.Background(), create)
	assert.NoError(t, err)
	second, err := saver.CreateOnce(context.Background(), create)
	assert.NoError(t, err)

	assert.Equal(t, wantID, first)
	assert.Equal(t, wantID, second)
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, wantID, saver.DocumentID())
}

func TestCreateOnce_FailureAllowsRetry(t *testing.T) {
	saver := NewAutoSaver(DefaultAutoSaveDelay)
	wantID := uuid.New()
	calls := 0

	_, err := saver.CreateOnce(context.Background(), func(ctx context.Context) (uuid.UUID, error) {
		calls++
		return uuid.Nil, assert.AnError
	})
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, saver.DocumentID())

	id, err := saver.CreateOnce(context.Background(), func(ctx context.Context) (uuid.UUID, error) {
		calls++
		return wantID, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, wantID, id)
	assert.Equal(t, 2, calls)
}

func TestDraftSessions_SameKeySharesGuard(t *testing.T) {
	sessions := NewDraftSessions()
	wantID := uuid.New()
	var created atomic.Int32

	create := func(ctx context.Context) (uuid.UUID, error) {
		created.Add(1)
		time.Sleep(20 * time.Millisecond)
		return wantID, nil
	}

	// Both callers look the saver up independently, as two requests would.
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := sessions.For("company:invoice:sess-1").CreateOnce(context.Background(), create)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, wantID, ids[0])
	assert.Equal(t, wantID, ids[1])
}

func TestDraftSessions_DistinctKeysAreIndependent(t *testing.T) {
	sessions := NewDraftSessions()
	assert.Same(t, sessions.For("a"), sessions.For("a"))
	assert.NotSame(t, sessions.For("a"), sessions.For("b"))
}

func TestDraftSessions_ReleaseStartsFreshSession(t *testing.T) {
	sessions := NewDraftSessions()
	before := sessions.For("a")
	sessions.Release("a")
	assert.NotSame(t, before, sessions.For("a"))
}

func TestSchedule_DebouncesToSingleSave(t *testing.T) {
	saver := NewAutoSaver(30 * time.Millisecond)
	var saves atomic.Int32

	for i := 0; i < 5; i++ {
		saver.Schedule(func() { saves.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())
}

func TestCancelPending_StopsScheduledSave(t *testing.T) {
	saver := NewAutoSaver(20 * time.Millisecond)
	var saves atomic.Int32

	saver.Schedule(func() { saves.Add(1) })
	saver.CancelPending()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), saves.Load())
}
