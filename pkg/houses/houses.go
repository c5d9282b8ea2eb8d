// Package houses exposes a filterable view over a static snapshot of
// Chicago residential properties. The backing data combines Cook County
// Assessor house records with Chicago Data Portal community areas; the
// snapshot is from 2022 and reflects no later changes.
package houses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/wdm0006/chicagohouses/pkg/frame"
	"github.com/wdm0006/chicagohouses/pkg/geo"
	"github.com/wdm0006/chicagohouses/pkg/profile"
	"github.com/wdm0006/chicagohouses/pkg/query"
)

// Column names of the backing parquet file.
const (
	ColPIN        = "pin"
	ColAddress    = "addr"
	ColBuildYear  = "build_year"
	ColCommunity  = "community"
	ColHousePoint = "house_point"
)

// DefaultDataPath is where the packaged dataset lives relative to the
// module root.
const DefaultDataPath = "data/houses.parquet.gzip"

// DefaultDocURL documents the upstream Cook County Assessor dataset the
// characteristic columns come from.
const DefaultDocURL = "https://datacatalog.cookcountyil.gov/Property-Taxation/" +
	"Assessor-Archived-05-11-2022-Residential-Property-/bcnq-qi2z"

// coreColumns is the minimal projection returned when FullData is false.
var coreColumns = []string{ColPIN, ColAddress, ColBuildYear, ColCommunity, ColHousePoint}

var (
	ErrDataUnavailable      = errors.New("houses: data file unavailable")
	ErrInvalidOutput        = errors.New("houses: invalid output selection")
	ErrInvalidYearRange     = errors.New("houses: invalid year range")
	ErrInvalidCommunityArea = errors.New("houses: invalid community area")
)

// Output selects the result representation.
type Output string

const (
	// OutputGeospatial materializes the table and parses house_point WKT
	// into point geometry under EPSG:4326.
	OutputGeospatial Output = "geospatial"
	// OutputTabular materializes a plain table; geometry stays a WKT
	// string column.
	OutputTabular Output = "tabular"
	// OutputLazy returns the unexecuted scan plan for callers who want to
	// compose further operations before collecting.
	OutputLazy Output = "lazy tabular"
)

// YearRange is an inclusive build-year filter.
type YearRange struct {
	Min int
	Max int
}

// NewYearRange normalizes raw bounds into an inclusive range. One bound
// selects a single year; two bounds select [min, max]; anything else is
// ErrInvalidYearRange.
func NewYearRange(bounds ...int) (YearRange, error) {
	switch len(bounds) {
	case 1:
		return YearRange{Min: bounds[0], Max: bounds[0]}, nil
	case 2:
		if bounds[0] > bounds[1] {
			return YearRange{}, fmt.Errorf("%w: lower bound %d exceeds upper bound %d",
				ErrInvalidYearRange, bounds[0], bounds[1])
		}
		return YearRange{Min: bounds[0], Max: bounds[1]}, nil
	default:
		return YearRange{}, fmt.Errorf("%w: requires 1 or 2 bounds, got %d",
			ErrInvalidYearRange, len(bounds))
	}
}

// Params are the filter criteria for one Get call. Zero values mean "no
// filter" for the optional fields.
type Params struct {
	// CommunityAreas restricts results to the named Chicago community
	// areas. Matching is case-insensitive; every name must exist in the
	// dataset.
	CommunityAreas []string
	// Years holds raw build-year bounds: one value selects that single
	// year, two select an inclusive range. Empty means no year filter.
	Years []int
	// FullData includes the upstream characteristic columns (square
	// footage, room counts, ...) instead of the minimal core columns.
	FullData bool
	// Output picks the result representation; empty defaults to
	// OutputGeospatial.
	Output Output
}

// Result is a discriminated output: exactly one of Table, Geo, or Plan is
// set, matching the Output tag.
type Result struct {
	Output Output
	Table  *frame.Frame
	Geo    *geo.Frame
	Plan   *query.Plan
}

// Dataset is a handle on one read-only parquet snapshot. Every call scans
// the file fresh; the file is assumed immutable for the process lifetime.
type Dataset struct {
	path         string
	docURL       string
	snapshotYear int

	// Notice receives the dataset-documentation message printed when
	// FullData is selected. Defaults to os.Stderr.
	Notice io.Writer
}

// Open points a Dataset at a parquet file, failing fast if the file is
// missing.
func Open(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: ensure file exists at %q", ErrDataUnavailable, path)
	}
	return &Dataset{path: path, docURL: DefaultDocURL, Notice: os.Stderr}, nil
}

// Path returns the backing file location.
func (d *Dataset) Path() string { return d.path }

// SnapshotYear reports the dataset snapshot year when known from a
// manifest, zero otherwise.
func (d *Dataset) SnapshotYear() int { return d.snapshotYear }

// Get returns the houses matching the supplied filters, in the requested
// representation. All validation failures abort the whole call; there are
// no partial results.
func (d *Dataset) Get(ctx context.Context, p Params) (*Result, error) {
	if _, err := os.Stat(d.path); err != nil {
		return nil, fmt.Errorf("%w: ensure file exists at %q", ErrDataUnavailable, d.path)
	}

	out := p.Output
	if out == "" {
		out = OutputGeospatial
	}
	switch out {
	case OutputGeospatial, OutputTabular, OutputLazy:
	default:
		return nil, fmt.Errorf("%w: %q, choose one of %q, %q, or %q",
			ErrInvalidOutput, p.Output, OutputGeospatial, OutputTabular, OutputLazy)
	}

	var years *YearRange
	if len(p.Years) > 0 {
		yr, err := NewYearRange(p.Years...)
		if err != nil {
			return nil, err
		}
		years = &yr
	}

	areas, err := d.validateAreas(ctx, p.CommunityAreas)
	if err != nil {
		return nil, err
	}

	plan := query.Scan(d.path)
	if !p.FullData {
		plan = plan.Select(coreColumns...)
	} else {
		fmt.Fprintln(d.notice(), "See dataset documentation here:", d.docURL)
	}
	if len(areas) > 0 {
		plan = plan.Filter(query.NewStringIn(ColCommunity, areas))
	}
	if years != nil {
		plan = plan.Filter(&query.IntBetween{
			Column: ColBuildYear,
			Min:    int64(years.Min),
			Max:    int64(years.Max),
		})
	}

	switch out {
	case OutputLazy:
		return &Result{Output: out, Plan: plan}, nil
	case OutputTabular:
		table, err := plan.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{Output: out, Table: table}, nil
	default:
		table, err := plan.Collect(ctx)
		if err != nil {
			return nil, err
		}
		gf, err := geo.FromWKT(table, ColHousePoint)
		if err != nil {
			return nil, err
		}
		return &Result{Output: out, Geo: gf}, nil
	}
}

// CommunityAreas returns the sorted distinct community-area names present
// in the dataset. The list is derived per call rather than cached.
func (d *Dataset) CommunityAreas(ctx context.Context) ([]string, error) {
	return query.Scan(d.path).DistinctStrings(ctx, ColCommunity)
}

// Profile scans the core columns and returns their accumulated statistics.
func (d *Dataset) Profile(ctx context.Context) (*profile.Collector, error) {
	return query.Scan(d.path).Select(coreColumns...).Profile(ctx)
}

// validateAreas uppercases the requested names and checks each against the
// dataset's distinct community values. All unknown names are reported in a
// single error.
func (d *Dataset) validateAreas(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	areas := make([]string, len(requested))
	for i, a := range requested {
		areas[i] = strings.ToUpper(strings.TrimSpace(a))
	}
	known, err := d.CommunityAreas(ctx)
	if err != nil {
		return nil, err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	var invalid []string
	for _, a := range areas {
		if _, ok := knownSet[a]; !ok {
			invalid = append(invalid, a)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, fmt.Errorf("%w: the following are not valid community areas: %s",
			ErrInvalidCommunityArea, strings.Join(invalid, ", "))
	}
	return areas, nil
}

func (d *Dataset) notice() io.Writer {
	if d.Notice != nil {
		return d.Notice
	}
	return os.Stderr
}

// Get runs one query against the dataset at DefaultDataPath.
func Get(ctx context.Context, p Params) (*Result, error) {
	d, err := Open(DefaultDataPath)
	if err != nil {
		return nil, err
	}
	return d.Get(ctx, p)
}
