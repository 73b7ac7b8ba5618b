// Command validate performs integrity checks on a pentad rainfall archive
// before it is served to the anomaly service. It verifies the grid
// definition, the temporal regularity of the pentads and the sanity of the
// rainfall values, then decodes the archive through the same path the
// service uses.
//
// Usage:
//
//	go run ./cmd/validate -archive data/mock/chirps_pentad_archive.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/archive"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
)

const (
	pentadsPerYear = 72
	// Highest pentad total considered plausible, in mm.
	maxPentadMm = 1500.0
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	archivePath := flag.String("archive", "", "path to the pentad archive JSON")
	flag.Parse()

	if *archivePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*archivePath); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Rainfall Archive Integrity Validation ===")
	fmt.Println()

	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open archive: %v\n", err)
		return 1
	}
	defer f.Close()

	doc, err := archive.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode archive: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateGrid(doc),
		validateTemporal(doc),
		validateValues(doc),
		validateSeries(doc),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Archive: dataset %s, band %s, %d images on %dx%d grid\n",
		doc.Dataset, doc.Band, len(doc.Images), doc.Grid.Rows, doc.Grid.Cols)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateGrid(doc archive.Document) *phase {
	p := &phase{name: "Phase 1: Grid consistency"}

	grid := doc.Grid.DomainGrid()
	if err := grid.Validate(); err != nil {
		p.errorf("grid: %v", err)
		return p
	}
	if grid.CRS != domain.DefaultCRS {
		p.errorf("grid CRS %s, want %s", grid.CRS, domain.DefaultCRS)
	}
	b := grid.Bound()
	if b.Min.X() < -180 || b.Max.X() > 180 || b.Min.Y() < -90 || b.Max.Y() > 90 {
		p.errorf("grid extent %v is outside geographic bounds", b)
	}
	if doc.Dataset == "" {
		p.errorf("dataset is empty")
	}
	if doc.Band == "" {
		p.errorf("band is empty")
	}
	for i, img := range doc.Images {
		if len(img.Values) != grid.Len() {
			p.errorf("image %d (%s): %d values, want %d", i, img.Time.Format(time.DateOnly), len(img.Values), grid.Len())
		}
	}
	return p
}

func validateTemporal(doc archive.Document) *phase {
	p := &phase{name: "Phase 2: Temporal regularity"}
	if len(doc.Images) == 0 {
		p.errorf("archive has no images")
		return p
	}

	perYear := make(map[int]int)
	for i, img := range doc.Images {
		ts := img.Time.UTC()
		if i > 0 && !ts.After(doc.Images[i-1].Time) {
			p.errorf("image %d (%s) is not after the previous image", i, ts.Format(time.DateOnly))
		}
		if !isPentadStart(ts) {
			p.errorf("image %d (%s) does not start a pentad", i, ts.Format(time.DateOnly))
		}
		perYear[ts.Year()]++
	}

	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for i, y := range years {
		if perYear[y] != pentadsPerYear {
			p.errorf("year %d: %d pentads, want %d", y, perYear[y], pentadsPerYear)
		}
		if i > 0 && y != years[i-1]+1 {
			p.errorf("years %d to %d are missing", years[i-1]+1, y-1)
		}
	}
	return p
}

func validateValues(doc archive.Document) *phase {
	p := &phase{name: "Phase 3: Value sanity"}

	for i, img := range doc.Images {
		valid := 0
		for j, v := range img.Values {
			if v == nil {
				continue
			}
			valid++
			switch {
			case math.IsNaN(*v) || math.IsInf(*v, 0):
				p.errorf("image %d pixel %d: non-finite value", i, j)
			case *v < 0:
				p.errorf("image %d pixel %d: negative rainfall %.2f", i, j, *v)
			case *v > maxPentadMm:
				p.errorf("image %d pixel %d: implausible rainfall %.2f mm", i, j, *v)
			}
		}
		if valid == 0 && len(img.Values) > 0 {
			p.errorf("image %d (%s) has no valid pixel", i, img.Time.Format(time.DateOnly))
		}
	}
	return p
}

func validateSeries(doc archive.Document) *phase {
	p := &phase{name: "Phase 4: Series decoding"}

	series, err := doc.Series()
	if err != nil {
		p.errorf("decode series: %v", err)
		return p
	}
	first, last, ok := series.Span()
	if !ok {
		return p
	}
	for y := first.Year(); y <= last.Year(); y++ {
		total, err := domain.AggregateYear(series, y)
		if err != nil {
			p.errorf("aggregate %d: %v", y, err)
			continue
		}
		if total.ValidCount() == 0 {
			p.errorf("year %d has no pixel with a valid annual total", y)
		}
	}
	return p
}

func isPentadStart(ts time.Time) bool {
	if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 {
		return false
	}
	switch ts.Day() {
	case 1, 6, 11, 16, 21, 26:
		return true
	}
	return false
}
