package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Image is a single timestamped raster.
type Image struct {
	Time  time.Time
	Field *Field
}

// TimeSeries is an immutable, time-ordered collection of images on one grid.
type TimeSeries struct {
	grid   Grid
	images []Image
}

// NewTimeSeries orders images by time, keeping the input order of equal
// timestamps, and checks that they all share a grid.
func NewTimeSeries(images []Image) (TimeSeries, error) {
	if len(images) == 0 {
		return TimeSeries{}, nil
	}

	sorted := make([]Image, len(images))
	copy(sorted, images)
	for i, img := range sorted {
		if img.Field == nil {
			return TimeSeries{}, fmt.Errorf("image %d at %s has no field", i, img.Time.Format(time.RFC3339))
		}
	}

	grid := sorted[0].Field.Grid()
	for _, img := range sorted[1:] {
		if img.Field.Grid() != grid {
			return TimeSeries{}, &GridMismatchError{Want: grid, Got: img.Field.Grid()}
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return TimeSeries{grid: grid, images: sorted}, nil
}

// EmptySeries returns a series with no images that still reports grid.
func EmptySeries(grid Grid) TimeSeries {
	return TimeSeries{grid: grid}
}

// Grid returns the shared grid. It is the zero Grid for a series built from
// no images.
func (s TimeSeries) Grid() Grid { return s.grid }

func (s TimeSeries) Len() int { return len(s.images) }

// Images returns a copy of the ordered images.
func (s TimeSeries) Images() []Image {
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out
}

// Filter returns the images inside window, preserving order.
func (s TimeSeries) Filter(window TimeRange) TimeSeries {
	out := TimeSeries{grid: s.grid}
	for _, img := range s.images {
		if window.Contains(img.Time) {
			out.images = append(out.images, img)
		}
	}
	return out
}

// Span returns the first and last image timestamps.
func (s TimeSeries) Span() (first, last time.Time, ok bool) {
	if len(s.images) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.images[0].Time, s.images[len(s.images)-1].Time, true
}

// TimeRange is a window of calendar days, inclusive at both ends.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates that end is not before start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, errors.New("time range needs both start and end")
	}
	if calendarDay(end).Before(calendarDay(start)) {
		return TimeRange{}, fmt.Errorf("time range end %s is before start %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return TimeRange{Start: start, End: end}, nil
}

// YearRange returns January 1 through December 31 of year.
func YearRange(year int) TimeRange {
	return TimeRange{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// YearsRange returns January 1 of first through December 31 of last.
func YearsRange(first, last int) TimeRange {
	return TimeRange{Start: YearRange(first).Start, End: YearRange(last).End}
}

// Contains reports whether t falls on a calendar day inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	d := calendarDay(t)
	return !d.Before(calendarDay(r.Start)) && !d.After(calendarDay(r.End))
}

func (r TimeRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

func (r TimeRange) String() string {
	return r.Start.UTC().Format(time.DateOnly) + ".." + r.End.UTC().Format(time.DateOnly)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
