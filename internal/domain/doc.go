// Package domain models gridded rainfall data and the statistics derived from
// it: climatological baselines, anomalies, severity classes and regional
// summaries.
//
// Everything in this package is pure. Functions take immutable values and
// return new ones; none of them perform I/O, hold locks or read the clock.
//
// # Data Source
//
// Rainfall rasters follow the CHIRPS pentad product (Climate Hazards Group
// InfraRed Precipitation with Station data, UCSB-CHG/CHIRPS/PENTAD). Each image
// holds precipitation in millimetres accumulated over a pentad on a regular
// lon/lat grid with a native cell size of 0.05° (about 5566 m at the equator).
//
// Pentad conventions:
//
//	Six pentads per month, 72 per year, starting on days 1, 6, 11, 16, 21 and 26.
//	The sixth pentad runs to the end of the month (3 to 6 days long).
//	Images are stamped with the pentad start date in UTC.
//
// Grid conventions:
//
//	Row 0 is the northern edge. Pixel (row, col) spans
//	  lon [MinLon + col*CellSize, MinLon + (col+1)*CellSize]
//	  lat [MaxLat - (row+1)*CellSize, MaxLat - row*CellSize]
//	Values are stored row-major. Two grids are compatible only when every
//	field, including the CRS, is equal.
//
// # No-Data
//
// Missing values are tracked with a validity mask on [Field], never with a
// numeric sentinel. Every pixel operation propagates no-data, and any
// arithmetic result that is NaN or infinite (division by zero in particular)
// is stored as no-data rather than as a number.
//
// # Time Windows
//
// A [TimeRange] is inclusive at both ends with calendar-day granularity: an
// image stamped at any instant of the end date belongs to the window. A year
// window therefore covers January 1 through December 31.
//
// # Severity Classification
//
// Percentage anomalies map to seven ordered classes. Boundaries are
// asymmetric: drought bands close on the lower side, wet bands close on the
// upper side, and Normal is closed on both:
//
//	p < -30        1 Severe drought
//	-30 <= p < -20 2 Moderate drought
//	-20 <= p < -10 3 Mild drought
//	-10 <= p <= 10 4 Normal
//	10 < p <= 20   5 Mild wet
//	20 < p <= 30   6 Moderate wet
//	p > 30         7 Severe wet
//
// # Areas
//
// Pixel areas are geodesic (see [Region.AreaField]) and reported in square
// kilometres. A pixel belongs to a region when its centre lies inside the
// region geometry.
package domain
