package utils

import (
	"strings"
	"testing"
)

func TestChunkReaderChunks(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b\n")
	for i := 0; i < 25; i++ {
		b.WriteString("x,y\n")
	}

	r, err := NewChunkReader(strings.NewReader(b.String()), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}

	var sizes []int
	total := 0
	for {
		rows, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rows == nil {
			break
		}
		sizes = append(sizes, len(rows))
		for _, row := range rows {
			if row.Index != total {
				t.Errorf("row index = %d, want %d", row.Index, total)
			}
			total++
		}
	}

	if total != 25 {
		t.Errorf("total rows = %d, want 25", total)
	}
	want := []int{10, 10, 5}
	if len(sizes) != len(want) {
		t.Fatalf("chunk sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("chunk sizes = %v, want %v", sizes, want)
		}
	}
}

func TestChunkReaderEmptyInput(t *testing.T) {
	if _, err := NewChunkReader(strings.NewReader(""), 10); err == nil {
		t.Fatal("empty input accepted")
	}
}

func TestChunkReaderHeaderOnly(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("a,b\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	rows, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestChunkReaderInvalidSize(t *testing.T) {
	if _, err := NewChunkReader(strings.NewReader("a\n1\n"), 0); err == nil {
		t.Fatal("zero chunk size accepted")
	}
}

func TestRequireColumns(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("FlightDate, Origin ,Dest\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if err := r.RequireColumns("FlightDate", "Origin", "Dest"); err != nil {
		t.Errorf("RequireColumns on present (trimmed) columns: %v", err)
	}
	err = r.RequireColumns("Carrier", "Tail")
	if err == nil {
		t.Fatal("missing columns not reported")
	}
	if !strings.Contains(err.Error(), "Carrier") || !strings.Contains(err.Error(), "Tail") {
		t.Errorf("error %q does not name every missing column", err)
	}
}

func TestFieldAccess(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("a,b,c\n1,2\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	rows, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	row := rows[0]
	if got := r.Field(row, "b"); got != "2" {
		t.Errorf("Field(b) = %q, want 2", got)
	}
	// Short row: column exists in the header but not in this record
	if got := r.Field(row, "c"); got != "" {
		t.Errorf("Field(c) on short row = %q, want empty", got)
	}
	if got := r.Field(row, "zzz"); got != "" {
		t.Errorf("Field(unknown) = %q, want empty", got)
	}
}
