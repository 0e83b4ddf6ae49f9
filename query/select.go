package query

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// Paging bounds, matching the HTTP layer's defaults.
const (
	LimitDefault = 20
	LimitMax     = 100
)

// Operator is a filter comparison.
type Operator string

const (
	OpEquals            Operator = "eq"
	OpNotEquals         Operator = "neq"
	OpLessThan          Operator = "lt"
	OpGreaterThan       Operator = "gt"
	OpLessThanEquals    Operator = "lte"
	OpGreaterThanEquals Operator = "gte"
	OpLike              Operator = "like"
	OpILike             Operator = "ilike"
	OpIs                Operator = "is"
	OpIn                Operator = "in"
)

// Filter is one column comparison. Values holds a single element except for
// OpIn, where it holds the whole list.
type Filter struct {
	Column string
	Op     Operator
	Values []string
}

// Order is one ORDER BY term.
type Order struct {
	Column     string
	Descending bool
}

// Select describes a table view. Columns must be named explicitly; they are
// both projected and used as the JSON object keys of each returned row.
type Select struct {
	Table   string
	Columns []string
	Filters []Filter
	Order   []Order
	Limit   int
	Offset  int
}

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL renders the select to a query returning one JSON document per row
// under the json_result column, plus its bound arguments.
func (s *Select) SQL() (string, []any, error) {
	if !columnPattern.MatchString(s.Table) {
		return "", nil, fmt.Errorf("query: invalid table name %q", s.Table)
	}
	if len(s.Columns) == 0 {
		return "", nil, fmt.Errorf("query: no columns selected")
	}
	for _, c := range s.Columns {
		if !columnPattern.MatchString(c) {
			return "", nil, fmt.Errorf("query: invalid column name %q", c)
		}
	}

	lines := []string{"SELECT json_object("}
	parts := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		parts = append(parts, fmt.Sprintf(`'%s', "%s"`, c, c))
	}
	lines = append(lines, "  "+strings.Join(parts, ",\n  "))
	lines = append(lines, ") AS json_result")
	lines = append(lines, "FROM (")
	lines = append(lines, "  SELECT *")
	lines = append(lines, fmt.Sprintf(`  FROM "%s"`, s.Table))

	var args []any
	if len(s.Filters) > 0 {
		clauses := make([]string, 0, len(s.Filters))
		for _, f := range s.Filters {
			clause, filterArgs, err := f.sql()
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, filterArgs...)
		}
		lines = append(lines, "  WHERE "+strings.Join(clauses, "\n    AND "))
	}

	if len(s.Order) > 0 {
		terms := make([]string, 0, len(s.Order))
		for _, o := range s.Order {
			if !columnPattern.MatchString(o.Column) {
				return "", nil, fmt.Errorf("query: invalid column name %q", o.Column)
			}
			direction := "ASC"
			if o.Descending {
				direction = "DESC"
			}
			terms = append(terms, fmt.Sprintf(`"%s" %s`, o.Column, direction))
		}
		lines = append(lines, "  ORDER BY "+strings.Join(terms, ", "))
	}

	limit := s.Limit
	if limit <= 0 {
		limit = LimitDefault
	}
	if limit > LimitMax {
		limit = LimitMax
	}
	lines = append(lines, fmt.Sprintf("  LIMIT %d", limit))
	if s.Offset > 0 {
		lines = append(lines, fmt.Sprintf("  OFFSET %d", s.Offset))
	}

	lines = append(lines, ")")
	return strings.Join(lines, "\n"), args, nil
}

func (f *Filter) sql() (string, []any, error) {
	if !columnPattern.MatchString(f.Column) {
		return "", nil, fmt.Errorf("query: invalid column name %q", f.Column)
	}
	column := fmt.Sprintf(`"%s"`, f.Column)

	switch f.Op {
	case OpEquals:
		return column + " = ?", []any{f.scalar()}, nil
	case OpNotEquals:
		return column + " <> ?", []any{f.scalar()}, nil
	case OpLessThan:
		return column + " < ?", []any{f.scalar()}, nil
	case OpGreaterThan:
		return column + " > ?", []any{f.scalar()}, nil
	case OpLessThanEquals:
		return column + " <= ?", []any{f.scalar()}, nil
	case OpGreaterThanEquals:
		return column + " >= ?", []any{f.scalar()}, nil
	case OpLike:
		return column + " LIKE ?", []any{wildcard(f.scalar())}, nil
	case OpILike:
		// SQLite LIKE is already case-insensitive for ASCII; LOWER keeps
		// the clause portable to Postgres.
		return "LOWER(" + column + ") LIKE LOWER(?)", []any{wildcard(f.scalar())}, nil
	case OpIs:
		switch strings.ToLower(f.scalar()) {
		case "null":
			return column + " IS NULL", nil, nil
		case "not_null":
			return column + " IS NOT NULL", nil, nil
		default:
			return "", nil, fmt.Errorf("query: is accepts null or not_null, got %q", f.scalar())
		}
	case OpIn:
		if len(f.Values) == 0 {
			return "", nil, fmt.Errorf("query: empty in list for %q", f.Column)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")
		args := make([]any, len(f.Values))
		for i, v := range f.Values {
			args[i] = v
		}
		return column + " IN (" + placeholders + ")", args, nil
	default:
		return "", nil, fmt.Errorf("query: unknown operator %q", f.Op)
	}
}

func (f *Filter) scalar() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// wildcard translates PostgREST-style * wildcards to SQL %.
func wildcard(v string) string {
	return strings.ReplaceAll(v, "*", "%")
}

// Rows runs the select and returns each row as a decoded JSON object.
func Rows(ctx context.Context, db *gorm.DB, s *Select) ([]map[string]any, error) {
	sql, args, err := s.SQL()
	if err != nil {
		return nil, err
	}

	var docs []string
	if err := db.WithContext(ctx).Raw(sql, args...).Scan(&docs).Error; err != nil {
		return nil, fmt.Errorf("query: select from %q: %w", s.Table, err)
	}

	rows := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		var row map[string]any
		if err := json.Unmarshal([]byte(doc), &row); err != nil {
			return nil, fmt.Errorf("query: decode row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
