package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, openTimeout time.Duration, probes int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   probes,
	})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	b, now := newTestBreaker(2, 5*time.Second, 1)

	require.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitStateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	*now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one probe admitted")

	b.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, time.Second, 1)

	b.RecordFailure()
	*now = now.Add(2 * time.Second)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
}

func TestCircuitBreaker_ExecuteSkipsUncountableErrors(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute, 1)
	errRejected := errors.New("rejected by remote")

	err := b.Execute(context.Background(), func(context.Context) error { return errRejected }, func(err error) bool {
		return !errors.Is(err, errRejected)
	})
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, CircuitStateClosed, b.State())

	err = b.Execute(context.Background(), func(context.Context) error { return errors.New("timeout") }, nil)
	require.Error(t, err)
	assert.Equal(t, CircuitStateOpen, b.State())
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false})
	assert.Nil(t, b)
	assert.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitStateClosed, b.State())
}
