package auth_test

import (
	"testing"
	"time"

	"github.com/JamieOgun/PixelPanel/auth"
	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name          string
		inputTime     time.Time
		thresholdExpr string
		expected      bool
		expectErr     bool
	}{
		{
			name:          "Within 1 hour threshold",
			inputTime:     time.Now().Add(-20 * time.Minute),
			thresholdExpr: "1h",
			expected:      true,
		},
		{
			name:          "Outside 1 hour threshold",
			inputTime:     time.Now().Add(-2 * time.Hour),
			thresholdExpr: "1h",
			expected:      false,
		},
		{
			name:          "Future time",
			inputTime:     time.Now().Add(30 * time.Minute),
			thresholdExpr: "1h",
			expected:      true,
		},
		{
			name:          "Invalid threshold expression",
			inputTime:     time.Now(),
			thresholdExpr: "soon",
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := auth.IsWithinThresholdPeriod(tt.inputTime, tt.thresholdExpr)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	outside, err := auth.IsOutsideThresholdPeriod(time.Now().Add(-3*time.Hour), "1h")
	assert.NoError(t, err)
	assert.True(t, outside)

	within, err := auth.IsOutsideThresholdPeriod(time.Now().Add(-10*time.Minute), "1h")
	assert.NoError(t, err)
	assert.False(t, within)

	_, err = auth.IsOutsideThresholdPeriod(time.Now(), "whenever")
	assert.Error(t, err)
}
