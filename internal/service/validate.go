package service

import (
	"time"

	"campusride/internal/domain"
)

const (
	// maxWindow bounds the departure window of rides and trip requests.
	maxWindow = 48 * time.Hour

	// maxSeats is the largest seat count a campus car realistically carries.
	maxSeats = 8
)

// validateWindow checks the departure-window rules shared by rides and trip
// requests: earliest < latest, window at most 48h, latest still in the
// future, and the optional preferred time inside [earliest, latest].
func validateWindow(earliest, latest, preferred, now time.Time) error {
	if earliest.IsZero() || latest.IsZero() {
		return ErrInvalidWindow
	}
	if !earliest.Before(latest) {
		return ErrInvalidWindow
	}
	if latest.Sub(earliest) > maxWindow {
		return ErrWindowTooWide
	}
	if !latest.After(now) {
		return ErrWindowClosed
	}
	if !preferred.IsZero() && (preferred.Before(earliest) || preferred.After(latest)) {
		return ErrPreferredOutsideWindow
	}
	return nil
}

func validCategory(c domain.DistanceCategory) bool {
	switch c {
	case domain.DistanceShort, domain.DistanceMedium, domain.DistanceLong:
		return true
	}
	return false
}

func validSeats(seats int) bool {
	return seats >= 1 && seats <= maxSeats
}
