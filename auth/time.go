package auth

import "time"

// IsWithinThresholdPeriod reports whether t happened less than the given
// duration ago. The pattern is a time.ParseDuration expression, "24h" etc.
// Used to decide if verification and reset tokens are still fresh.
func IsWithinThresholdPeriod(t time.Time, pattern string) (bool, error) {
	duration, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	return t.After(time.Now().Add(-duration)), nil
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod.
func IsOutsideThresholdPeriod(t time.Time, pattern string) (bool, error) {
	within, err := IsWithinThresholdPeriod(t, pattern)
	if err != nil {
		return false, err
	}

	return !within, nil
}
