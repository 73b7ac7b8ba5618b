// Command genmock writes a synthetic CHIRPS-style pentad archive for local
// runs and tests. Each year holds 72 pentads with a monsoon-shaped seasonal
// cycle, a west-to-east wetness gradient and year-to-year variability. A
// small share of pixels can be marked as no-data.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/chirps_pentad_archive.json \
//	  -start-year 1991 -end-year 2023 \
//	  -rows 12 -cols 12 -bbox 68,6,97,37
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/archive"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
)

// Pentads start on these days of every month; the sixth runs to month end.
var pentadDays = []int{1, 6, 11, 16, 21, 26}

type options struct {
	out       string
	startYear int
	endYear   int
	rows      int
	cols      int
	bbox      [4]float64
	seed      uint64
	noData    float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/chirps_pentad_archive.json", "output path for the archive fixture")
	startYear := flag.Int("start-year", 1991, "first year to generate")
	endYear := flag.Int("end-year", 2023, "last year to generate")
	rows := flag.Int("rows", 12, "grid rows")
	cols := flag.Int("cols", 12, "grid columns")
	bbox := flag.String("bbox", "68,6,97,37", "min lon, min lat, max lon, max lat")
	seed := flag.Uint64("seed", 42, "random seed")
	noData := flag.Float64("nodata", 0.02, "fraction of pixels marked no-data per image")
	flag.Parse()

	opts := options{
		out:       *out,
		startYear: *startYear,
		endYear:   *endYear,
		rows:      *rows,
		cols:      *cols,
		seed:      *seed,
		noData:    *noData,
	}
	b, err := parseBBox(*bbox)
	if err != nil {
		return err
	}
	opts.bbox = b
	if opts.endYear < opts.startYear {
		return fmt.Errorf("end year %d is before start year %d", opts.endYear, opts.startYear)
	}
	if opts.noData < 0 || opts.noData >= 1 {
		return errors.New("nodata must be in [0, 1)")
	}

	series, err := generate(opts)
	if err != nil {
		return err
	}
	if err := archive.Save(opts.out, series); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	log.Printf("wrote %d images on a %s to %s", series.Len(), series.Grid(), opts.out)

	return printStats(series, opts.startYear, opts.endYear)
}

func parseBBox(s string) ([4]float64, error) {
	var b [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b, fmt.Errorf("bbox %q needs four comma-separated values", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return b, fmt.Errorf("bbox value %q: %w", p, err)
		}
		b[i] = v
	}
	if b[2] <= b[0] || b[3] <= b[1] {
		return b, fmt.Errorf("bbox %q has no area", s)
	}
	return b, nil
}

func generate(opts options) (domain.TimeSeries, error) {
	cellSize := math.Min((opts.bbox[2]-opts.bbox[0])/float64(opts.cols), (opts.bbox[3]-opts.bbox[1])/float64(opts.rows))
	grid := domain.Grid{
		MinLon:   opts.bbox[0],
		MaxLat:   opts.bbox[3],
		CellSize: cellSize,
		Rows:     opts.rows,
		Cols:     opts.cols,
		CRS:      domain.DefaultCRS,
	}
	if err := grid.Validate(); err != nil {
		return domain.TimeSeries{}, err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic fixture data
	images := make([]domain.Image, 0, (opts.endYear-opts.startYear+1)*72)

	for year := opts.startYear; year <= opts.endYear; year++ {
		// Wet and dry years scale the whole grid.
		yearFactor := 1 + 0.25*rng.NormFloat64()
		yearFactor = math.Max(0.3, yearFactor)

		for month := time.January; month <= time.December; month++ {
			for _, day := range pentadDays {
				ts := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				f, err := pentadField(grid, ts, yearFactor, opts.noData, rng)
				if err != nil {
					return domain.TimeSeries{}, err
				}
				images = append(images, domain.Image{Time: ts, Field: f})
			}
		}
	}
	return domain.NewTimeSeries(images)
}

func pentadField(grid domain.Grid, ts time.Time, yearFactor, noData float64, rng *rand.Rand) (*domain.Field, error) {
	n := grid.Len()
	values := make([]float64, n)
	valid := make([]bool, n)

	// Monsoon peak in late July.
	doy := float64(ts.YearDay())
	season := math.Exp(-math.Pow((doy-205)/45, 2))

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			i := row*grid.Cols + col
			if rng.Float64() < noData {
				continue
			}
			gradient := 0.5 + float64(col+1)/float64(grid.Cols)
			mean := (2 + 60*season) * gradient * yearFactor
			v := mean * (0.6 + 0.8*rng.Float64())
			values[i] = math.Round(v*100) / 100
			valid[i] = true
		}
	}
	return domain.NewField(grid, values, valid)
}

func printStats(series domain.TimeSeries, startYear, endYear int) error {
	fmt.Println()
	fmt.Println("Annual totals (grid mean, mm):")
	for year := startYear; year <= endYear; year++ {
		total, err := domain.AggregateYear(series, year)
		if err != nil {
			return fmt.Errorf("aggregate %d: %w", year, err)
		}
		values, valid := total.Values()
		var sum float64
		var count int
		for i, v := range values {
			if valid[i] {
				sum += v
				count++
			}
		}
		mean := math.NaN()
		if count > 0 {
			mean = sum / float64(count)
		}
		fmt.Printf("  %d  %8.1f  (%d pixels)\n", year, mean, count)
	}
	return nil
}
