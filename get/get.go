// Package get fetches table views and formats them for terminal or
// machine consumption.
package get

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ontodev/nanobot/query"
)

// Table runs the select and renders its rows in the requested format:
// "json" (pretty-printed array), "tsv", or "text" (aligned columns).
func Table(ctx context.Context, db *gorm.DB, s *query.Select, format string) (string, error) {
	rows, err := query.Rows(ctx, db, s)
	if err != nil {
		return "", err
	}

	switch format {
	case "json":
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return "", fmt.Errorf("get: encode rows: %w", err)
		}
		return string(out), nil
	case "tsv":
		return tabular(s.Columns, rows, "\t"), nil
	case "text", "":
		return aligned(s.Columns, rows), nil
	default:
		return "", fmt.Errorf("get: unknown format %q", format)
	}
}

func cell(row map[string]any, column string) string {
	value, ok := row[column]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		out, _ := json.Marshal(v)
		return string(out)
	}
}

func tabular(columns []string, rows []map[string]any, sep string) string {
	lines := []string{strings.Join(columns, sep)}
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, cell(row, c))
		}
		lines = append(lines, strings.Join(cells, sep))
	}
	return strings.Join(lines, "\n")
}

func aligned(columns []string, rows []map[string]any) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, c := range columns {
			if n := len(cell(row, c)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(c)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
			}
		}
		b.WriteString("\n")
	}

	writeRow(columns)
	for _, row := range rows {
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, cell(row, c))
		}
		writeRow(cells)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
