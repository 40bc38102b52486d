package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	errTransient := errors.New("transient")

	tests := map[string]struct {
		attempts   uint
		failFirst  int
		wantCalls  int
		wantErr    bool
		wantReport []uint
	}{
		"succeeds first time": {
			attempts:   3,
			failFirst:  0,
			wantCalls:  1,
			wantErr:    false,
			wantReport: nil,
		},
		"succeeds after one failure": {
			attempts:   3,
			failFirst:  1,
			wantCalls:  2,
			wantErr:    false,
			wantReport: []uint{1},
		},
		"succeeds on last attempt": {
			attempts:   3,
			failFirst:  2,
			wantCalls:  3,
			wantErr:    false,
			wantReport: []uint{1, 2},
		},
		"exhausts attempts": {
			attempts:   3,
			failFirst:  10,
			wantCalls:  3,
			wantErr:    true,
			wantReport: []uint{1, 2, 3},
		},
		"zero attempts still tries once": {
			attempts:   0,
			failFirst:  10,
			wantCalls:  1,
			wantErr:    true,
			wantReport: []uint{1},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			var reported []uint
			p := Policy{
				Attempts: tc.attempts,
				Delay:    0,
				OnFailure: func(attempt uint, err error) {
					reported = append(reported, attempt)
				},
			}

			err := Do(context.Background(), p, func() error {
				calls++
				if calls <= tc.failFirst {
					return errTransient
				}
				return nil
			})

			assert.Equal(t, tc.wantCalls, calls)
			assert.Equal(t, tc.wantReport, reported)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errTransient)
				var exhausted *ExhaustedError
				require.ErrorAs(t, err, &exhausted)
				assert.Equal(t, uint(tc.wantCalls), exhausted.Attempts)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDo_Cancelled(t *testing.T) {
	errTransient := errors.New("transient")

	tests := map[string]struct {
		cancelBefore bool
		wantCalls    int
	}{
		"cancelled before first attempt": {
			cancelBefore: true,
			wantCalls:    0,
		},
		"cancelled while waiting to retry": {
			cancelBefore: false,
			wantCalls:    1,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancelBefore {
				cancel()
			}

			calls := 0
			start := time.Now()
			err := Do(ctx, Policy{Attempts: 3, Delay: time.Hour}, func() error {
				calls++
				cancel()
				return errTransient
			})

			assert.Less(t, time.Since(start), time.Minute)
			assert.Equal(t, tc.wantCalls, calls)
			require.ErrorIs(t, err, context.Canceled)
			var exhausted *ExhaustedError
			assert.False(t, errors.As(err, &exhausted))
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	assert.Equal(t, uint(DefaultAttempts), p.Attempts)
	assert.Equal(t, DefaultDelay, p.Delay)
}
