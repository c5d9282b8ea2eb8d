package query

import (
	"context"
	"errors"
	"io"

	"github.com/wdm0006/chicagohouses/pkg/frame"
	"github.com/wdm0006/chicagohouses/pkg/io/parquetio"
	"github.com/wdm0006/chicagohouses/pkg/profile"
)

// Plan is an unexecuted scan over one parquet file. Nothing is read until
// Collect or DistinctStrings runs, so callers may keep composing projections
// and filters first.
type Plan struct {
	path      string
	cols      []string
	preds     []Predicate
	chunkSize int
}

// Scan starts a lazy plan over the parquet file at path.
func Scan(path string) *Plan {
	return &Plan{path: path}
}

// Select restricts the plan to the named columns. A nil or empty selection
// keeps every column.
func (p *Plan) Select(cols ...string) *Plan {
	p.cols = cols
	return p
}

// Filter appends a row predicate. Predicates combine with AND.
func (p *Plan) Filter(pred Predicate) *Plan {
	p.preds = append(p.preds, pred)
	return p
}

// WithChunkSize overrides the streaming chunk size (rows per read).
func (p *Plan) WithChunkSize(n int) *Plan {
	p.chunkSize = n
	return p
}

// Columns reports the current projection; nil means all columns.
func (p *Plan) Columns() []string { return p.cols }

// Collect executes the plan: stream chunks, project, filter, materialize.
func (p *Plan) Collect(ctx context.Context) (*frame.Frame, error) {
	r, err := parquetio.Open(p.path, parquetio.ReaderOptions{Columns: p.cols, ChunkSize: p.chunkSize})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	out := frame.New(r.Schema())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		keep, err := p.mask(chunk)
		if err != nil {
			return nil, err
		}
		for i := 0; i < chunk.Rows(); i++ {
			if !keep[i] {
				continue
			}
			if err := out.AppendRowFrom(chunk, i); err != nil {
				return nil, err
			}
		}
	}
}

// DistinctStrings scans only the named column and returns its sorted
// distinct values. Plan predicates are not applied; this reads the whole
// file.
func (p *Plan) DistinctStrings(ctx context.Context, col string) ([]string, error) {
	r, err := parquetio.Open(p.path, parquetio.ReaderOptions{Columns: []string{col}, ChunkSize: p.chunkSize})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	c := profile.NewCollector(r.Schema())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		c.ConsumeFrame(chunk)
	}
	return c.DistinctStrings(col)
}

// Profile scans the projected columns and returns their accumulated
// statistics.
func (p *Plan) Profile(ctx context.Context) (*profile.Collector, error) {
	r, err := parquetio.Open(p.path, parquetio.ReaderOptions{Columns: p.cols, ChunkSize: p.chunkSize})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	c := profile.NewCollector(r.Schema())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		c.ConsumeFrame(chunk)
	}
	return c, nil
}

func (p *Plan) mask(chunk *frame.Frame) ([]bool, error) {
	keep := make([]bool, chunk.Rows())
	for i := range keep {
		keep[i] = true
	}
	for _, pred := range p.preds {
		m, err := pred.Mask(chunk)
		if err != nil {
			return nil, err
		}
		for i := range keep {
			keep[i] = keep[i] && m[i]
		}
	}
	return keep, nil
}
