package query

import (
	"fmt"

	"github.com/wdm0006/chicagohouses/pkg/frame"
)

// Predicate marks which rows of a chunk survive a filter. Null cells never
// match.
type Predicate interface {
	Name() string
	Mask(f *frame.Frame) ([]bool, error)
}

// StringIn keeps rows whose column value is a member of Values. Matching is
// exact; callers normalize case before building the set.
type StringIn struct {
	Column string
	Values map[string]struct{}
}

func NewStringIn(col string, vals []string) *StringIn {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &StringIn{Column: col, Values: m}
}

func (p *StringIn) Name() string { return "string_in" }

func (p *StringIn) Mask(f *frame.Frame) ([]bool, error) {
	col, ok := f.ColumnByName(p.Column)
	if !ok {
		return nil, fmt.Errorf("%s: unknown column %s", p.Name(), p.Column)
	}
	sc, ok := col.(*frame.StringColumn)
	if !ok {
		return nil, fmt.Errorf("%s: column %s is not a string column", p.Name(), p.Column)
	}
	mask := make([]bool, sc.Len())
	for i := 0; i < sc.Len(); i++ {
		if sc.IsNull(i) {
			continue
		}
		v, _ := sc.Get(i)
		_, mask[i] = p.Values[v]
	}
	return mask, nil
}

// IntBetween keeps rows whose column value lies in [Min, Max] inclusive.
type IntBetween struct {
	Column string
	Min    int64
	Max    int64
}

func (p *IntBetween) Name() string { return "int_between" }

func (p *IntBetween) Mask(f *frame.Frame) ([]bool, error) {
	col, ok := f.ColumnByName(p.Column)
	if !ok {
		return nil, fmt.Errorf("%s: unknown column %s", p.Name(), p.Column)
	}
	ic, ok := col.(*frame.IntColumn)
	if !ok {
		return nil, fmt.Errorf("%s: column %s is not an int column", p.Name(), p.Column)
	}
	mask := make([]bool, ic.Len())
	for i := 0; i < ic.Len(); i++ {
		if ic.IsNull(i) {
			continue
		}
		v, _ := ic.Get(i)
		mask[i] = v >= p.Min && v <= p.Max
	}
	return mask, nil
}
