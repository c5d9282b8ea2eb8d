package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/chicagohouses/pkg/frame"
)

// ReaderOptions control schema inference and chunking.
type ReaderOptions struct {
	SampleRows int      // rows sampled for kind inference; default 100
	ChunkSize  int      // rows per Next() chunk; default 8192
	Columns    []string // optional projection; nil keeps every column
}

// StreamReader reads parquet rows in chunks as Frames, restricted to the
// projected columns.
type StreamReader struct {
	file   *os.File
	reader *parquet.GenericReader[map[string]any]
	schema frame.Schema
	buf    []map[string]any
}

// Open infers the schema from a sample of rows and positions a fresh reader
// at the start of the file.
func Open(path string, opt ReaderOptions) (*StreamReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := parquet.NewGenericReader[map[string]any](f)
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 100
	}
	rows := make([]map[string]any, sampleRows)
	for i := range rows {
		rows[i] = make(map[string]any)
	}
	n, err := r.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	schema := inferSchema(rows[:n])
	if len(opt.Columns) > 0 {
		schema, err = schema.Project(opt.Columns)
		if err != nil {
			_ = r.Close()
			_ = f.Close()
			return nil, fmt.Errorf("parquet %s: %w", path, err)
		}
	}
	// the generic reader cannot unread the sample, so restart it
	if err := r.Close(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	chunk := opt.ChunkSize
	if chunk <= 0 {
		chunk = 8192
	}
	buf := make([]map[string]any, chunk)
	for i := range buf {
		buf[i] = make(map[string]any)
	}
	return &StreamReader{
		file:   f,
		reader: parquet.NewGenericReader[map[string]any](f),
		schema: schema,
		buf:    buf,
	}, nil
}

func (s *StreamReader) Close() error {
	_ = s.reader.Close()
	return s.file.Close()
}

func (s *StreamReader) Schema() frame.Schema { return s.schema }

// Next returns the next chunk of rows, or io.EOF when the file is drained.
func (s *StreamReader) Next() (*frame.Frame, error) {
	for i := range s.buf {
		clear(s.buf[i])
	}
	n, err := s.reader.Read(s.buf)
	if n == 0 && err != nil {
		return nil, err
	}
	f := frame.New(s.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		setRow(f, f.Rows()-1, s.buf[i])
	}
	return f, nil
}

// ReadAll drains the file into a single Frame.
func (s *StreamReader) ReadAll() (*frame.Frame, error) {
	out := frame.New(s.schema)
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for i := 0; i < chunk.Rows(); i++ {
			if err := out.AppendRowFrom(chunk, i); err != nil {
				return nil, err
			}
		}
	}
}

func inferSchema(rows []map[string]any) frame.Schema {
	keysSet := map[string]struct{}{}
	for _, m := range rows {
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	kinds := make([]frame.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range rows {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case float32, float64:
				nNum++
			case int, int32, int64:
				nNum++
				nInt++
			case bool:
				nBool++
			case string:
				if strings.TrimSpace(t) != "" {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case nBool > nNum && nBool >= nStr:
			kinds[i] = frame.KindBool
		case nNum > nStr:
			if nInt == nNum {
				kinds[i] = frame.KindInt
			} else {
				kinds[i] = frame.KindFloat
			}
		default:
			kinds[i] = frame.KindString
		}
	}
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = frame.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema
}

func setRow(f *frame.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case frame.KindFloat:
			switch t := v.(type) {
			case float32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case int32:
				_ = f.SetCell(row, cs.Name, float64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, float64(t))
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseFloat(s, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		case frame.KindInt:
			switch t := v.(type) {
			case int32:
				_ = f.SetCell(row, cs.Name, int64(t))
			case int64:
				_ = f.SetCell(row, cs.Name, t)
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseInt(s, 10, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		case frame.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			case []byte:
				_ = f.SetCell(row, cs.Name, string(t))
			default:
				_ = f.SetCell(row, cs.Name, fmt.Sprintf("%v", t))
			}
		}
	}
}
