package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAutoSaveDelay is the quiet period edits buffer for before a
// background save fires.
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaver debounces background saves for one document editing session and
// guards first-save creation with a single-flight check. Fast typing plus a
// quick submit would otherwise race the debounced auto-save and the explicit
// save into creating two drafts; with the guard, the second caller waits for
// the in-flight create and reuses its id.
type AutoSaver struct {
	delay time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	inflight chan struct{}
	docID    uuid.UUID
	err      error
}

func NewAutoSaver(delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{delay: delay}
}

// Schedule arms the debounce timer, replacing any pending save.
func (a *AutoSaver) Schedule(save func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, save)
}

// CancelPending drops the pending debounced save, if any. An explicit
// submit calls this before saving so both paths cannot fire.
func (a *AutoSaver) CancelPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// CreateOnce runs create at most once per session. Concurrent callers block
// until the first create resolves and receive the same document id. A
// failed create clears the guard so the next save may retry.
func (a *AutoSaver) CreateOnce(ctx context.Context, create func(ctx context.Context) (uuid.UUID, error)) (uuid.UUID, error) {
	a.mu.Lock()
	if a.inflight != nil {
		ch := a.inflight
		a.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return uuid.Nil, ctx.Err()
		}

		a.mu.Lock()
		id, err := a.docID, a.err
		a.mu.Unlock()
		return id, err
	}

	ch := make(chan struct{})
	a.inflight = ch
	a.mu.Unlock()

	id, err := create(ctx)

	a.mu.Lock()
	a.docID, a.err = id, err
	if err != nil {
		a.inflight = nil
	}
	a.mu.Unlock()
	close(ch)

	return id, err
}

// DraftSessions hands out one AutoSaver per active editing session so every
// first-save path for a session shares the same single-flight create guard.
// Keys carry the company, kind and the client's draft session token.
type DraftSessions struct {
	mu       sync.Mutex
	sessions map[string]*AutoSaver
}

func NewDraftSessions() *DraftSessions {
	return &DraftSessions{sessions: make(map[string]*AutoSaver)}
}

// For returns the session's AutoSaver, creating it on first use.
func (r *DraftSessions) For(key string) *AutoSaver {
	r.mu.Lock()
	defer r.mu.Unlock()
	saver, ok := r.sessions[key]
	if !ok {
		saver = NewAutoSaver(DefaultAutoSaveDelay)
		r.sessions[key] = saver
	}
	return saver
}

// Release drops a finished session. Called once the session's document
// leaves draft; saves after that carry the document id and never create.
func (r *DraftSessions) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// DocumentID returns the id produced by a completed create, or uuid.Nil.
func (a *AutoSaver) DocumentID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight == nil || a.err != nil {
		return uuid.Nil
	}
	select {
	case <-a.inflight:
		return a.docID
	default:
		return uuid.Nil
	}
}
