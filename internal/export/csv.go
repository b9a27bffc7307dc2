// Package export writes emitted insight rows as CSV with a stable header.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ignite/insight-stream/internal/insights"
)

// Columns builds the output header for a run: date and item identity first,
// then one column per metric (or event, for event-based runs), then the
// breakdown dimensions.
func Columns(itemType insights.ItemType, metrics, events, breakdowns []string) []string {
	cols := []string{"date", string(itemType) + "Id", string(itemType) + "Name"}
	if len(events) > 0 {
		cols = append(cols, events...)
	} else {
		cols = append(cols, metrics...)
	}
	cols = append(cols, breakdowns...)
	return cols
}

// CSVWriter streams row batches to CSV. The header is written before the
// first record; row values missing a column are left empty.
type CSVWriter struct {
	w           *csv.Writer
	columns     []string
	wroteHeader bool
}

// NewCSVWriter creates a writer emitting the given columns in order.
func NewCSVWriter(w io.Writer, columns []string) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), columns: columns}
}

// WriteBatch appends one batch of rows.
func (c *CSVWriter) WriteBatch(rows []insights.Row) error {
	if !c.wroteHeader {
		if err := c.w.Write(c.columns); err != nil {
			return fmt.Errorf("export: writing header: %w", err)
		}
		c.wroteHeader = true
	}

	record := make([]string, len(c.columns))
	for _, row := range rows {
		for i, col := range c.columns {
			record[i] = formatValue(row[col])
		}
		if err := c.w.Write(record); err != nil {
			return fmt.Errorf("export: writing row: %w", err)
		}
	}
	return nil
}

// Flush writes buffered output and reports any deferred write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
