package parquetio_test

import (
	"path/filepath"
	"testing"

	"github.com/wdm0006/chicagohouses/pkg/frame"
	"github.com/wdm0006/chicagohouses/pkg/io/parquetio"
)

func houseFrame() *frame.Frame {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "pin", Type: frame.KindString, Nullable: true},
		{Name: "addr", Type: frame.KindString, Nullable: true},
		{Name: "build_year", Type: frame.KindInt, Nullable: true},
		{Name: "community", Type: frame.KindString, Nullable: true},
		{Name: "sqft", Type: frame.KindFloat, Nullable: true},
	}}
	f := frame.New(s)
	rows := []map[string]any{
		{"pin": "14-21-111-001-0000", "addr": "3600 N LAKE SHORE DR", "build_year": int64(1925), "community": "LAKE VIEW", "sqft": 1800.0},
		{"pin": "17-16-300-003-0000", "addr": "899 S PLYMOUTH CT", "build_year": int64(1980), "community": "LOOP", "sqft": 1200.0},
		{"pin": "20-11-100-005-0000", "addr": "5496 S HYDE PARK BLVD", "build_year": int64(1906), "community": "HYDE PARK"},
	}
	for i, m := range rows {
		f.AppendNullRow()
		for k, v := range m {
			_ = f.SetCell(i, k, v)
		}
	}
	return f
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.parquet.gzip")
	if err := parquetio.WriteAll(path, houseFrame()); err != nil {
		t.Fatal(err)
	}

	r, err := parquetio.Open(path, parquetio.ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()

	got, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", got.Rows())
	}
	col, ok := got.ColumnByName("build_year")
	if !ok {
		t.Fatal("missing build_year column")
	}
	ic, ok := col.(*frame.IntColumn)
	if !ok {
		t.Fatalf("build_year inferred as %v, want int", col.Kind())
	}
	years := map[int64]bool{}
	for i := 0; i < ic.Len(); i++ {
		if v, ok := ic.Get(i); ok {
			years[v] = true
		}
	}
	for _, want := range []int64{1925, 1980, 1906} {
		if !years[want] {
			t.Fatalf("missing build year %d", want)
		}
	}
	// sqft was absent on one row; it must come back null, not zero
	sq, _ := got.ColumnByName("sqft")
	nulls := 0
	for i := 0; i < sq.Len(); i++ {
		if sq.IsNull(i) {
			nulls++
		}
	}
	if nulls != 1 {
		t.Fatalf("expected exactly 1 null sqft, got %d", nulls)
	}
}

func TestProjection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.parquet.gzip")
	if err := parquetio.WriteAll(path, houseFrame()); err != nil {
		t.Fatal(err)
	}

	r, err := parquetio.Open(path, parquetio.ReaderOptions{Columns: []string{"pin", "community"}})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Close() }()

	if len(r.Schema().Columns) != 2 {
		t.Fatalf("expected 2 projected columns, got %d", len(r.Schema().Columns))
	}
	got, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows() != 3 || got.Cols() != 2 {
		t.Fatalf("got %dx%d, want 3x2", got.Rows(), got.Cols())
	}
	if _, ok := got.ColumnByName("build_year"); ok {
		t.Fatal("build_year should be projected out")
	}
}

func TestProjectionUnknownColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "houses.parquet.gzip")
	if err := parquetio.WriteAll(path, houseFrame()); err != nil {
		t.Fatal(err)
	}
	if _, err := parquetio.Open(path, parquetio.ReaderOptions{Columns: []string{"bogus"}}); err == nil {
		t.Fatal("expected error for unknown projected column")
	}
}
