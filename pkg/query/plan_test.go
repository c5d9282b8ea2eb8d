package query_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wdm0006/chicagohouses/pkg/frame"
	"github.com/wdm0006/chicagohouses/pkg/io/parquetio"
	"github.com/wdm0006/chicagohouses/pkg/query"
)

var coreColumns = []string{"pin", "addr", "build_year", "community", "house_point"}

func writeFixture(t *testing.T) string {
	t.Helper()
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "pin", Type: frame.KindString, Nullable: true},
		{Name: "addr", Type: frame.KindString, Nullable: true},
		{Name: "build_year", Type: frame.KindInt, Nullable: true},
		{Name: "community", Type: frame.KindString, Nullable: true},
		{Name: "house_point", Type: frame.KindString, Nullable: true},
		{Name: "sqft", Type: frame.KindFloat, Nullable: true},
	}}
	f := frame.New(s)
	rows := []map[string]any{
		{"pin": "14-21-111-001-0000", "addr": "3600 N LAKE SHORE DR", "build_year": int64(1925), "community": "LAKE VIEW", "house_point": "POINT (-87.6448 41.9484)", "sqft": 1800.0},
		{"pin": "17-16-300-003-0000", "addr": "899 S PLYMOUTH CT", "build_year": int64(1980), "community": "LOOP", "house_point": "POINT (-87.6291 41.8697)", "sqft": 1200.0},
		{"pin": "17-16-301-004-0000", "addr": "1143 S WABASH AVE", "build_year": int64(2015), "community": "LOOP", "house_point": "POINT (-87.6258 41.8679)", "sqft": 2100.0},
		{"pin": "20-11-100-005-0000", "addr": "5496 S HYDE PARK BLVD", "build_year": int64(1906), "community": "HYDE PARK", "house_point": "POINT (-87.5862 41.7983)", "sqft": 2400.0},
	}
	for i, m := range rows {
		f.AppendNullRow()
		for k, v := range m {
			_ = f.SetCell(i, k, v)
		}
	}
	path := filepath.Join(t.TempDir(), "houses.parquet.gzip")
	if err := parquetio.WriteAll(path, f); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectProjectAndFilter(t *testing.T) {
	path := writeFixture(t)
	plan := query.Scan(path).
		Select(coreColumns...).
		Filter(query.NewStringIn("community", []string{"LOOP"})).
		Filter(&query.IntBetween{Column: "build_year", Min: 2000, Max: 2020})

	out, err := plan.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 1 {
		t.Fatalf("expected 1 row, got %d", out.Rows())
	}
	if !reflect.DeepEqual(out.ColumnNames(), coreColumns) {
		t.Fatalf("unexpected columns: %v", out.ColumnNames())
	}
	col, _ := out.ColumnByName("addr")
	if v, _ := col.(*frame.StringColumn).Get(0); v != "1143 S WABASH AVE" {
		t.Fatalf("unexpected addr: %q", v)
	}
}

func TestCollectNoFilters(t *testing.T) {
	path := writeFixture(t)
	out, err := query.Scan(path).WithChunkSize(2).Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 4 {
		t.Fatalf("expected 4 rows, got %d", out.Rows())
	}
	if out.Cols() != 6 {
		t.Fatalf("expected all 6 columns, got %d", out.Cols())
	}
}

func TestIntBetweenInclusiveBounds(t *testing.T) {
	path := writeFixture(t)
	out, err := query.Scan(path).
		Filter(&query.IntBetween{Column: "build_year", Min: 1906, Max: 1925}).
		Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 2 {
		t.Fatalf("bounds should be inclusive; expected 2 rows, got %d", out.Rows())
	}
}

func TestDistinctStrings(t *testing.T) {
	path := writeFixture(t)
	got, err := query.Scan(path).DistinctStrings(context.Background(), "community")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"HYDE PARK", "LAKE VIEW", "LOOP"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPredicateTypeMismatch(t *testing.T) {
	path := writeFixture(t)
	_, err := query.Scan(path).
		Filter(&query.IntBetween{Column: "community", Min: 0, Max: 1}).
		Collect(context.Background())
	if err == nil {
		t.Fatal("expected error filtering a string column with IntBetween")
	}
}

func TestProfile(t *testing.T) {
	path := writeFixture(t)
	c, err := query.Scan(path).Select("build_year", "community").Profile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, cp := range c.Columns() {
		switch cp.Name {
		case "build_year":
			if cp.Num == nil || cp.Num.Min != 1906 || cp.Num.Max != 2015 {
				t.Fatalf("unexpected build_year stats: %+v", cp.Num)
			}
		case "community":
			if cp.Str == nil || cp.Str.Freqs["LOOP"] != 2 {
				t.Fatalf("unexpected community stats: %+v", cp.Str)
			}
		}
	}
}
