package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/chicagohouses/pkg/frame"
)

type NumStats struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Sum   float64
}

type BoolStats struct {
	Count int
	Nulls int
	True  int
	False int
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Bool *BoolStats
	Str  *StringStats
}

// Collector accumulates per-column statistics across streamed chunks. It
// backs distinct-value scans and dataset summaries.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
}

func NewCollector(schema frame.Schema) *Collector {
	c := &Collector{index: make(map[string]int)}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// ConsumeFrame folds one chunk into the running statistics. Columns not
// known to the collector are ignored.
func (c *Collector) ConsumeFrame(f *frame.Frame) {
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(cs.Name)
		switch cs.Type {
		case frame.KindFloat:
			fc := col.(*frame.FloatColumn)
			for i := 0; i < fc.Len(); i++ {
				if fc.IsNull(i) {
					cp.Num.Nulls++
					continue
				}
				v, _ := fc.Get(i)
				cp.Num.Count++
				if v < cp.Num.Min {
					cp.Num.Min = v
				}
				if v > cp.Num.Max {
					cp.Num.Max = v
				}
				cp.Num.Sum += v
			}
		case frame.KindInt:
			ic := col.(*frame.IntColumn)
			for i := 0; i < ic.Len(); i++ {
				if ic.IsNull(i) {
					cp.Num.Nulls++
					continue
				}
				v, _ := ic.Get(i)
				cp.Num.Count++
				fv := float64(v)
				if fv < cp.Num.Min {
					cp.Num.Min = fv
				}
				if fv > cp.Num.Max {
					cp.Num.Max = fv
				}
				cp.Num.Sum += fv
			}
		case frame.KindBool:
			bc := col.(*frame.BoolColumn)
			for i := 0; i < bc.Len(); i++ {
				if bc.IsNull(i) {
					cp.Bool.Nulls++
					continue
				}
				v, _ := bc.Get(i)
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			}
		default:
			sc := col.(*frame.StringColumn)
			for i := 0; i < sc.Len(); i++ {
				if sc.IsNull(i) {
					cp.Str.Nulls++
					continue
				}
				v, _ := sc.Get(i)
				cp.Str.Count++
				cp.Str.Freqs[v]++
			}
		}
	}
}

// Columns returns the accumulated per-column profiles.
func (c *Collector) Columns() []ColumnProfile { return c.cols }

// DistinctStrings returns the sorted distinct values seen in a string
// column.
func (c *Collector) DistinctStrings(name string) ([]string, error) {
	idx, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("profile: unknown column %s", name)
	}
	cp := c.cols[idx]
	if cp.Str == nil {
		return nil, fmt.Errorf("profile: column %s is not a string column", name)
	}
	out := make([]string, 0, len(cp.Str.Freqs))
	for v := range cp.Str.Freqs {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// ReportText renders a human-readable summary.
func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s: ", cp.Name)
		switch {
		case cp.Num != nil:
			mean := 0.0
			if cp.Num.Count > 0 {
				mean = cp.Num.Sum / float64(cp.Num.Count)
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, mean)
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n",
				cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d\n",
				cp.Str.Count, cp.Str.Nulls, len(cp.Str.Freqs))
		}
	}
	return b.String()
}
