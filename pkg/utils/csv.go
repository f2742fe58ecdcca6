package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one CSV data row with its zero-based position among the data
// rows of the file
type Row struct {
	Index  int
	Fields []string
}

// ChunkReader streams CSV data rows in fixed-size chunks so arbitrarily
// large files load in bounded memory. The header row is consumed at
// construction.
type ChunkReader struct {
	reader  *csv.Reader
	columns map[string]int
	size    int
	next    int
	done    bool
}

// NewChunkReader wraps rd and reads its header. An empty input is an
// error since the column layout cannot be determined.
func NewChunkReader(rd io.Reader, size int) (*ChunkReader, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	return &ChunkReader{
		reader:  r,
		columns: columns,
		size:    size,
	}, nil
}

// RequireColumns returns an error naming every listed column missing
// from the header
func (c *ChunkReader) RequireColumns(names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := c.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Next returns the next chunk of at most the configured size. It
// returns a nil slice once the file is exhausted.
func (c *ChunkReader) Next() ([]Row, error) {
	if c.done {
		return nil, nil
	}
	rows := make([]Row, 0, c.size)
	for len(rows) < c.size {
		record, err := c.reader.Read()
		if err == io.EOF {
			c.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", c.next, err)
		}
		rows = append(rows, Row{Index: c.next, Fields: record})
		c.next++
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

// Field returns the named column of a row, empty when the column is
// absent from the header or the row is short
func (c *ChunkReader) Field(row Row, name string) string {
	idx, ok := c.columns[name]
	if !ok || idx >= len(row.Fields) {
		return ""
	}
	return row.Fields[idx]
}
