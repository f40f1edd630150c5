package attendance

import "fmt"

// DashboardLimit caps the interactive view; exports are uncapped.
const DashboardLimit = 200

// displayOffsetHours is the fixed UTC offset applied for presentation and
// date filtering only. Stored values stay UTC.
const displayOffsetHours = 8

// Filters are the optional, independently combinable query parameters.
type Filters struct {
	DateFrom  string // inclusive ISO date, compared in display time
	DateTo    string // inclusive ISO date, compared in display time
	StudentID string // students.id equality
	Type      string // log type equality
	SortBy    string
	SortOrder string
}

// Sort columns are mapped through a closed whitelist before being composed
// into the query text. They cannot be bound parameters, so this validation
// is the injection defense: anything outside the map falls back to the
// default and is never interpolated.
var sortColumns = map[string]string{
	"created_at_utc": "a.created_at_utc",
	"student_name":   "s.name",
	"student_id":     "s.student_id",
	"type":           "a.type",
}

var sortOrders = map[string]string{
	"asc":  "ASC",
	"desc": "DESC",
}

func sortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return "a.created_at_utc"
}

func sortOrder(key string) string {
	if ord, ok := sortOrders[key]; ok {
		return ord
	}
	return "DESC"
}

const localDateExpr = "(a.created_at_utc AT TIME ZONE 'UTC' + interval '%d hours')::date"

// buildQuery composes the filtered, sorted attendance query. limit <= 0
// means unbounded (export path).
func buildQuery(f Filters, limit int) (string, []any) {
	query := fmt.Sprintf(`
		SELECT
			a.id,
			a.type,
			a.created_at_utc,
			s.student_id,
			s.name,
			(`+localDateExpr+`)::text,
			((a.created_at_utc AT TIME ZONE 'UTC' + interval '%d hours')::time(0))::text
		FROM attendance_logs a
		LEFT JOIN students s ON s.id = a.student_id
		WHERE 1=1`, displayOffsetHours, displayOffsetHours)
	var args []any

	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		query += fmt.Sprintf(" AND "+localDateExpr+" >= $%d::date", displayOffsetHours, len(args))
	}
	if f.DateTo != "" {
		args = append(args, f.DateTo)
		query += fmt.Sprintf(" AND "+localDateExpr+" <= $%d::date", displayOffsetHours, len(args))
	}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		query += fmt.Sprintf(" AND s.id = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND a.type = $%d", len(args))
	}

	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn(f.SortBy), sortOrder(f.SortOrder))
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}
