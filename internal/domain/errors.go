package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. The typed errors below match them.
var (
	ErrInsufficientData           = errors.New("insufficient data")
	ErrInsufficientBaselineWindow = errors.New("insufficient baseline window")
	ErrGridMismatch               = errors.New("grid mismatch")
	ErrRegionArea                 = errors.New("region covers no pixels")
)

// InsufficientDataError reports a time window with no images in it.
type InsufficientDataError struct {
	Window TimeRange
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: no images in %s", e.Window)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// InsufficientBaselineWindowError reports a baseline span shorter than two years.
type InsufficientBaselineWindowError struct {
	YearStart int
	YearEnd   int
}

func (e *InsufficientBaselineWindowError) Error() string {
	return fmt.Sprintf("insufficient baseline window: %d-%d spans %d year(s), need at least 2",
		e.YearStart, e.YearEnd, e.YearEnd-e.YearStart+1)
}

func (e *InsufficientBaselineWindowError) Is(target error) bool {
	return target == ErrInsufficientBaselineWindow
}

// GridMismatchError reports two rasters that do not share a grid.
type GridMismatchError struct {
	Want Grid
	Got  Grid
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("grid mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *GridMismatchError) Is(target error) bool {
	return target == ErrGridMismatch
}

// RegionAreaError reports a region whose geometry contains no pixel centre of
// the grid it was evaluated against.
type RegionAreaError struct {
	Region string
}

func (e *RegionAreaError) Error() string {
	return fmt.Sprintf("region %q covers no pixels", e.Region)
}

func (e *RegionAreaError) Is(target error) bool {
	return target == ErrRegionArea
}
