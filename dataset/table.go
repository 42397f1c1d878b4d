package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-decay/measure/decay"
)

const (
	// TableFile is the table name inside a dataset folder.
	TableFile = "table.txt"
	// TimeColumn is the exact header of the time column.
	TimeColumn = "# t (s)"
	// DefaultComponent is the magnetization component read per region.
	DefaultComponent = "y"
)

// ErrNotFound reports a dataset folder without a table. It is also an
// [decay.ErrInvalidInput].
var ErrNotFound = fmt.Errorf("%w: table not found", decay.ErrInvalidInput)

// Table is one parsed dataset table.
type Table struct {
	Time     []float64
	Channels [][]float64
	// Columns holds the header of each entry in Channels.
	Columns []string
}

// ChannelColumn returns the header of region i (1-based) for component.
func ChannelColumn(i int, component string) string {
	return fmt.Sprintf("m.region%d%s ()", i, component)
}

// ValidComponent reports whether c names a magnetization component.
func ValidComponent(c string) bool {
	return c == "x" || c == "y" || c == "z"
}

// ParseTable reads a tab-separated table and extracts the time column and the
// component column of regions 1..channels. Other columns are ignored.
func ParseTable(r io.Reader, channels int, component string) (*Table, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: channel count must be >= 1: %d", decay.ErrInvalidInput, channels)
	}

	if component == "" {
		component = DefaultComponent
	}

	if !ValidComponent(component) {
		return nil, fmt.Errorf("%w: unknown component %q", decay.ErrInvalidInput, component)
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", decay.ErrInvalidInput)
		}

		return nil, fmt.Errorf("%w: header: %w", decay.ErrInvalidInput, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	timeIdx, ok := index[TimeColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", decay.ErrInvalidInput, TimeColumn)
	}

	tbl := &Table{
		Channels: make([][]float64, channels),
		Columns:  make([]string, channels),
	}

	cols := make([]int, channels)
	for c := range channels {
		name := ChannelColumn(c+1, component)

		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", decay.ErrInvalidInput, name)
		}

		cols[c] = idx
		tbl.Columns[c] = name
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", decay.ErrInvalidInput, err)
		}

		line, _ := reader.FieldPos(0)

		t, err := parseField(record, timeIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", decay.ErrInvalidInput, line, err)
		}

		tbl.Time = append(tbl.Time, t)

		for c, idx := range cols {
			v, err := parseField(record, idx)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", decay.ErrInvalidInput, line, err)
			}

			tbl.Channels[c] = append(tbl.Channels[c], v)
		}
	}

	return tbl, nil
}

func parseField(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("missing field %d", idx)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", idx, err)
	}

	return v, nil
}
