package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// IsWithinThresholdPeriod checks if the current time is within the
// threshold period from the given timestamp.
func IsWithinThresholdPeriod(since time.Time, period string) (bool, error) {
	window, err := time.ParseDuration(period)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid threshold period").
			WithMetadata(map[string]any{"period": period})
	}

	return time.Since(since) <= window, nil
}

// IsOutsideThresholdPeriod checks if the current time is outside the
// threshold period from the given timestamp.
func IsOutsideThresholdPeriod(since time.Time, period string) (bool, error) {
	within, err := IsWithinThresholdPeriod(since, period)
	if err != nil {
		return false, err
	}
	return !within, nil
}
