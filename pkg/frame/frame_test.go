package frame_test

import (
	"testing"

	"github.com/wdm0006/chicagohouses/pkg/frame"
)

func houseSchema() frame.Schema {
	return frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "pin", Type: frame.KindString, Nullable: true},
		{Name: "build_year", Type: frame.KindInt, Nullable: true},
		{Name: "sqft", Type: frame.KindFloat, Nullable: true},
	}}
}

func TestSetCellAndGet(t *testing.T) {
	f := frame.New(houseSchema())
	f.AppendNullRow()
	if err := f.SetCell(0, "pin", "14-21-111-001-0000"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCell(0, "build_year", 1925); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCell(0, "nope", "x"); err == nil {
		t.Fatal("expected error for unknown column")
	}

	col, _ := f.ColumnByName("build_year")
	v, ok := col.(*frame.IntColumn).Get(0)
	if !ok || v != 1925 {
		t.Fatalf("got %d (ok=%v), want 1925", v, ok)
	}
	sq, _ := f.ColumnByName("sqft")
	if !sq.IsNull(0) {
		t.Fatal("sqft should be null")
	}
}

func TestRowValuesSkipsNulls(t *testing.T) {
	f := frame.New(houseSchema())
	f.AppendNullRow()
	_ = f.SetCell(0, "pin", "17-16-300-003-0000")

	rec := f.RowValues(0)
	if len(rec) != 1 {
		t.Fatalf("expected 1 cell, got %d: %v", len(rec), rec)
	}
	if rec["pin"] != "17-16-300-003-0000" {
		t.Fatalf("unexpected pin: %v", rec["pin"])
	}
}

func TestSchemaProject(t *testing.T) {
	s := houseSchema()
	sub, err := s.Project([]string{"build_year", "pin"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sub.Columns) != 2 || sub.Columns[0].Name != "build_year" || sub.Columns[1].Name != "pin" {
		t.Fatalf("unexpected projection: %+v", sub.Columns)
	}
	if _, err := s.Project([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestAppendRowFrom(t *testing.T) {
	src := frame.New(houseSchema())
	for i := 0; i < 2; i++ {
		src.AppendNullRow()
	}
	_ = src.SetCell(0, "pin", "a")
	_ = src.SetCell(0, "build_year", 2001)
	_ = src.SetCell(1, "pin", "b")

	sub, err := houseSchema().Project([]string{"pin", "build_year"})
	if err != nil {
		t.Fatal(err)
	}
	dst := frame.New(sub)
	for i := 0; i < src.Rows(); i++ {
		if err := dst.AppendRowFrom(src, i); err != nil {
			t.Fatal(err)
		}
	}
	if dst.Rows() != 2 || dst.Cols() != 2 {
		t.Fatalf("got %dx%d, want 2x2", dst.Rows(), dst.Cols())
	}
	col, _ := dst.ColumnByName("build_year")
	if v, ok := col.(*frame.IntColumn).Get(0); !ok || v != 2001 {
		t.Fatalf("row 0 build_year = %d (ok=%v), want 2001", v, ok)
	}
	if !col.IsNull(1) {
		t.Fatal("row 1 build_year should stay null")
	}
}

func TestAppendRowFromKindMismatch(t *testing.T) {
	src := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "build_year", Type: frame.KindString, Nullable: true},
	}})
	src.AppendNullRow() // cell left null
	dst := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "build_year", Type: frame.KindInt, Nullable: true},
	}})
	// a mismatched column must fail even when the source cell is null
	if err := dst.AppendRowFrom(src, 0); err == nil {
		t.Fatal("expected kind mismatch error for null source cell")
	}
}
