package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Throttle delays the first export after an idle period. It is a busy
// flag, not a semaphore: calls that arrive while the flag is set wait only
// until the initial delay has passed, then run alongside the others.
type Throttle struct {
	delay time.Duration

	mu    sync.Mutex
	busy  bool
	ready chan struct{}
}

func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{delay: delay}
}

// Begin blocks until the caller may export. The returned release must be
// called once the export is done. Only the caller that set the busy flag
// clears it; release is a no-op for callers that merely waited, so a
// straggler from an earlier cycle cannot end a later one.
func (t *Throttle) Begin(ctx context.Context) (release func(), err error) {
	t.mu.Lock()
	if t.busy {
		ready := t.ready
		t.mu.Unlock()
		select {
		case <-ready:
			return func() {}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	t.busy = true
	ready := make(chan struct{})
	t.ready = ready
	t.mu.Unlock()

	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		close(ready)
		return func() { t.end(ready) }, nil
	case <-ctx.Done():
		t.end(ready)
		close(ready)
		return nil, ctx.Err()
	}
}

// end clears the busy flag if the cycle started with ready is still the
// current one.
func (t *Throttle) end(ready chan struct{}) {
	t.mu.Lock()
	if t.ready == ready {
		t.busy = false
	}
	t.mu.Unlock()
}

// Memo caches successful exports for one conversion run. Concurrent
// requests for the same key share a single export.
type Memo struct {
	mu      sync.Mutex
	results map[string][]byte
	group   singleflight.Group
}

func NewMemo() *Memo {
	return &Memo{results: make(map[string][]byte)}
}

func (m *Memo) Do(key string, fn func() ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	if b, ok := m.results[key]; ok {
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		b, err := fn()
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.results[key] = b
		m.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Run wraps an exporter with one run's memo and throttle.
type Run struct {
	exporter Exporter
	memo     *Memo
	throttle *Throttle
}

func NewRun(exporter Exporter, delay time.Duration) *Run {
	return &Run{exporter: exporter, memo: NewMemo(), throttle: NewThrottle(delay)}
}

func (r *Run) Export(ctx context.Context, id string, s Settings) ([]byte, error) {
	key := fmt.Sprintf("%s|%s|%s:%g|%t", id, s.Format, s.Constraint.Type, s.Constraint.Value, s.ExcludeChildren)
	return r.memo.Do(key, func() ([]byte, error) {
		release, err := r.throttle.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
		return r.exporter.Export(ctx, id, s)
	})
}

// ColorVariables forwards to the wrapped exporter when it knows about
// variables.
func (r *Run) ColorVariables(id string) map[string]string {
	if cv, ok := r.exporter.(ColorVariables); ok {
		return cv.ColorVariables(id)
	}
	return nil
}
