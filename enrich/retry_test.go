package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	errTemp := errors.New("temporary")
	tests := []struct {
		name         string
		maxAttempts  int
		failures     int
		permanent    bool
		wantErr      error
		wantAttempts int
	}{
		{"first try", 3, 0, false, nil, 1},
		{"eventual success", 5, 2, false, nil, 3},
		{"all attempts fail", 3, 10, false, errTemp, 3},
		{"permanent stops early", 5, 10, true, errTemp, 1},
		{"invalid attempts", 0, 0, false, ErrInvalidMaxAttempts, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := RetryWithBackoff(context.Background(), func() error {
				attempts++
				if attempts <= tt.failures {
					if tt.permanent {
						return Permanent(errTemp)
					}
					return errTemp
				}
				return nil
			}, tt.maxAttempts, time.Millisecond)

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetryWithBackoffContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoffDelaysDouble(t *testing.T) {
	start := time.Now()
	_ = RetryWithBackoff(context.Background(), func() error {
		return errors.New("error")
	}, 3, 20*time.Millisecond)

	// 20ms + 40ms between the three attempts.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
