package core

import "github.com/pkg/errors"

// Shift is the period of the day a class group or course meets.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
)

var ErrInvalidShift = errors.New("invalid shift")

// ParseShift converts a form value into a typed Shift; raw strings never
// travel past the boundary.
func ParseShift(s string) (Shift, error) {
	switch Shift(CleanString(s, true /* lower */)) {
	case ShiftMorning:
		return ShiftMorning, nil
	case ShiftAfternoon:
		return ShiftAfternoon, nil
	case ShiftEvening:
		return ShiftEvening, nil
	}
	return "", ErrInvalidShift
}
