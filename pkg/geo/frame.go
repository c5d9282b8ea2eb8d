package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/wdm0006/chicagohouses/pkg/frame"
)

// CRS is the coordinate reference system of every geometry in this dataset:
// longitude/latitude on WGS 84.
const CRS = "EPSG:4326"

// Frame couples a materialized table with a parsed point-geometry column.
type Frame struct {
	table   *frame.Frame
	geomCol string
	points  []orb.Point
	valid   []bool
}

// FromWKT parses the named WKT string column of t into point geometries.
// Rows whose cell is null or not a valid point keep a null geometry.
func FromWKT(t *frame.Frame, col string) (*Frame, error) {
	c, ok := t.ColumnByName(col)
	if !ok {
		return nil, fmt.Errorf("geo: unknown geometry column %s", col)
	}
	sc, ok := c.(*frame.StringColumn)
	if !ok {
		return nil, fmt.Errorf("geo: geometry column %s is not a string column", col)
	}
	g := &Frame{
		table:   t,
		geomCol: col,
		points:  make([]orb.Point, t.Rows()),
		valid:   make([]bool, t.Rows()),
	}
	for i := 0; i < sc.Len(); i++ {
		if sc.IsNull(i) {
			continue
		}
		s, _ := sc.Get(i)
		pt, err := wkt.UnmarshalPoint(s)
		if err != nil {
			continue
		}
		g.points[i] = pt
		g.valid[i] = true
	}
	return g, nil
}

func (g *Frame) Table() *frame.Frame { return g.table }
func (g *Frame) Rows() int           { return g.table.Rows() }
func (g *Frame) CRS() string         { return CRS }

// Geometry returns the point for row i and whether it is non-null.
func (g *Frame) Geometry(i int) (orb.Point, bool) {
	return g.points[i], g.valid[i]
}

// Bound returns the extent of all non-null geometries.
func (g *Frame) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for i, pt := range g.points {
		if !g.valid[i] {
			continue
		}
		if first {
			b = orb.Bound{Min: pt, Max: pt}
			first = false
			continue
		}
		b = b.Extend(pt)
	}
	return b
}

// ToGeoJSON renders one point feature per row with a non-null geometry. The
// remaining table columns become feature properties; the raw WKT column is
// dropped in favor of the parsed geometry.
func (g *Frame) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < g.Rows(); i++ {
		pt, ok := g.Geometry(i)
		if !ok {
			continue
		}
		f := geojson.NewFeature(pt)
		for k, v := range g.table.RowValues(i) {
			if k == g.geomCol {
				continue
			}
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}
