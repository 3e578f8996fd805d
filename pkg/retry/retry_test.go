package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type temporaryError struct{ temporary bool }

func (e temporaryError) Error() string   { return "temporary" }
func (e temporaryError) Temporary() bool { return e.temporary }

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts:     attempts,
		BackoffStrategy: BackoffConstant,
		InitialDelay:    time.Millisecond,
	}
}

func TestExecutor_Execute_Success(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestExecutor_Execute_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	persistent := errors.New("persistent error")
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		return persistent
	})
	assert.ErrorIs(t, err, persistent)
	assert.Equal(t, 3, attempts)
}

func TestExecutor_Execute_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxAttempts: 5, BackoffStrategy: BackoffConstant, InitialDelay: time.Hour}

	attempts := 0
	err := WithPredicate(ctx, cfg, func() error {
		attempts++
		cancel()
		return errors.New("fail")
	}, RetryOnAnyError)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestWithPredicate_RetryOnTemporary(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		attempts int
	}{
		{name: "temporary retried", err: temporaryError{temporary: true}, attempts: 3},
		{name: "permanent not retried", err: temporaryError{temporary: false}, attempts: 1},
		{name: "plain error not retried", err: errors.New("plain"), attempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := WithPredicate(context.Background(), fastConfig(3), func() error {
				attempts++
				return tt.err
			}, RetryOnTemporary)
			assert.Error(t, err)
			assert.Equal(t, tt.attempts, attempts)
		})
	}
}

func TestMaxElapsedTime(t *testing.T) {
	cfg := &Config{MaxAttempts: 10, BackoffStrategy: BackoffConstant, InitialDelay: 5 * time.Millisecond, MaxElapsedTime: time.Millisecond}
	err := Do(context.Background(), cfg, func() error { return errors.New("fail") })

	var elapsed MaxElapsedTimeError
	assert.ErrorAs(t, err, &elapsed)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		attempt int
		want    time.Duration
	}{
		{name: "constant", config: Config{BackoffStrategy: BackoffConstant, InitialDelay: 100 * time.Millisecond}, attempt: 3, want: 100 * time.Millisecond},
		{name: "linear", config: Config{BackoffStrategy: BackoffLinear, InitialDelay: 100 * time.Millisecond}, attempt: 3, want: 300 * time.Millisecond},
		{name: "exponential default multiplier", config: Config{BackoffStrategy: BackoffExponential, InitialDelay: 100 * time.Millisecond}, attempt: 3, want: 400 * time.Millisecond},
		{name: "capped", config: Config{BackoffStrategy: BackoffExponential, InitialDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond}, attempt: 3, want: 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.config).calculateDelay(tt.attempt))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, BackoffExponential, cfg.BackoffStrategy)
	assert.Equal(t, 200*time.Millisecond, cfg.InitialDelay)
}
