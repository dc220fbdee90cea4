package clients

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTime struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

func (m *manualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
}

func trippedBreaker(t *testing.T, halfOpenLimit int) (*CircuitBreaker, *manualTime) {
	t.Helper()

	clock := &manualTime{now: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   1,
		Timeout:       time.Minute,
		HalfOpenLimit: halfOpenLimit,
	}, WithNow(clock.Now))

	cb.RecordFailure()
	require.Equal(t, StateOpen, cb.State())

	return cb, clock
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 5, Timeout: time.Second, HalfOpenLimit: 1})

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute, HalfOpenLimit: 1})

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "a success resets the failure streak")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenProbes(t *testing.T) {
	cb, clock := trippedBreaker(t, 2)

	clock.Advance(30 * time.Second)
	assert.False(t, cb.Allow(), "still inside the open timeout")

	clock.Advance(31 * time.Second)
	assert.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "probe limit reached")
}

func TestCircuitBreaker_HalfOpenCloses(t *testing.T) {
	cb, clock := trippedBreaker(t, 2)
	clock.Advance(2 * time.Minute)

	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())

	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := trippedBreaker(t, 3)
	clock.Advance(2 * time.Minute)

	require.True(t, cb.Allow())
	cb.RecordFailure()

	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, clock := trippedBreaker(t, 1)

	var mu sync.Mutex
	var transitions []string

	done := make(chan struct{}, 2)
	cb.OnStateChange(func(from, to State) {
		mu.Lock()
		transitions = append(transitions, from.String()+"->"+to.String())
		mu.Unlock()
		done <- struct{}{}
	})

	clock.Advance(2 * time.Minute)
	require.True(t, cb.Allow())
	<-done

	cb.RecordSuccess()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_ZeroConfigIsUsable(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1000, Timeout: time.Second, HalfOpenLimit: 1})

	var allowed atomic.Int64
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if cb.Allow() {
				allowed.Add(1)
			}

			if i%2 == 0 {
				cb.RecordFailure()
			} else {
				cb.RecordSuccess()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
	assert.Equal(t, StateClosed, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
