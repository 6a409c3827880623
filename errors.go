package madness

import (
	"errors"
	"fmt"

	"github.com/Space-Marine-NASA-Hackathon-25/Madness/tools"
)

var (
	// ErrCrossingNotFound is returned when a scan spends its iteration budget
	// without the distance crossing the threshold.
	ErrCrossingNotFound = errors.New("crossing not found")
	// ErrInvalidBracket is returned when the refinement interval does not
	// contain a sign change, which means the coarse step is too large.
	ErrInvalidBracket = tools.ErrInvalidBracket
	// ErrDegenerateFit is returned when three samples do not define a minimum.
	ErrDegenerateFit = tools.ErrDegenerateFit
	// ErrFrameMismatch is returned when elements are used in a frame they do not belong to.
	ErrFrameMismatch = errors.New("elements origin does not match frame")
	// ErrInvalidParameter flags an unusable input (non-positive step, budget, radius...).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrOrdering is returned if the events are not in entry < approach < exit order.
	ErrOrdering = errors.New("events out of order")
)

// Phase names a stage of the crossing computation.
type Phase uint8

const (
	// PhaseEntry is the coarse search for the SOI entry.
	PhaseEntry Phase = iota + 1
	// PhaseInterior is the fine scan for the closest approach.
	PhaseInterior
	// PhaseExit is the search for the SOI exit.
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEntry:
		return "entry"
	case PhaseInterior:
		return "interior"
	case PhaseExit:
		return "exit"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// PhaseError wraps the error of one stage of the computation.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return e.Phase.String() + ": " + e.Err.Error()
}

// Unwrap allows errors.Is on the underlying sentinel.
func (e *PhaseError) Unwrap() error {
	return e.Err
}
