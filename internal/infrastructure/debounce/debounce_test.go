package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects debounced deliveries for assertions
type recorder struct {
	mu     sync.Mutex
	values []string
	fired  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

func (r *recorder) waitFire(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(timeout):
		t.Fatal("debouncer did not fire within timeout")
	}
}

func TestDebouncerDeliversSettledValue(t *testing.T) {
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("a")
	rec.waitFire(t, time.Second)

	assert.Equal(t, []string{"a"}, rec.recorded())
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	rec := newRecorder()
	d := New(100*time.Millisecond, rec.record)
	defer d.Stop()

	// Inputs arriving faster than the delay: only the final value lands
	for _, v := range []string{"a", "ab", "abc"} {
		d.Trigger(v)
		time.Sleep(10 * time.Millisecond)
	}

	rec.waitFire(t, time.Second)
	require.Equal(t, []string{"abc"}, rec.recorded())

	// No second delivery shows up afterwards
	select {
	case <-rec.fired:
		t.Fatal("unexpected extra delivery")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncerSeparateBurstsFireSeparately(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("first")
	rec.waitFire(t, time.Second)

	d.Trigger("second")
	rec.waitFire(t, time.Second)

	assert.Equal(t, []string{"first", "second"}, rec.recorded())
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.record)

	d.Trigger("doomed")
	require.True(t, d.Pending())
	d.Stop()
	require.False(t, d.Pending())

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.recorded())

	// Triggers after Stop are ignored
	d.Trigger("late")
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.recorded())
}

func TestDebouncerStopCancelsRearmedTimer(t *testing.T) {
	// Re-arm right around the first expiry so the new timer races with
	// the just-expired callback, then stop. A callback of a superseded
	// timer must not clear the live timer's reference, or Stop here
	// would have nothing left to cancel.
	for i := 0; i < 100; i++ {
		rec := newRecorder()
		d := New(time.Millisecond, rec.record)

		d.Trigger("settled")
		time.Sleep(time.Millisecond)
		d.Trigger("cancelled")
		d.Stop()

		time.Sleep(5 * time.Millisecond)
		assert.NotContains(t, rec.recorded(), "cancelled")
	}
}

func TestDebouncerConcurrentTriggers(t *testing.T) {
	rec := newRecorder()
	d := New(10*time.Millisecond, rec.record)
	defer d.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				d.Trigger("burst")
			}
		}()
	}
	wg.Wait()

	// The last trigger supersedes everything in flight: whatever fired
	// during the storm, the final delivery carries the final value.
	d.Trigger("settled")
	rec.waitFire(t, time.Second)

	time.Sleep(50 * time.Millisecond)
	values := rec.recorded()
	require.NotEmpty(t, values)
	assert.Equal(t, "settled", values[len(values)-1])
	assert.False(t, d.Pending())
}

func TestDebouncerDefaultDelay(t *testing.T) {
	d := New[int](0, func(int) {})
	defer d.Stop()
	assert.Equal(t, DefaultDelay, d.delay)
}
