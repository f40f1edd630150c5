package attendance

import (
	"strings"
	"testing"
)

func TestSortWhitelist(t *testing.T) {
	cases := map[string]string{
		"created_at_utc": "a.created_at_utc",
		"student_name":   "s.name",
		"student_id":     "s.student_id",
		"type":           "a.type",
		"":               "a.created_at_utc",
		"id; DROP TABLE students": "a.created_at_utc",
		"created_at_utc DESC --":  "a.created_at_utc",
	}
	for input, want := range cases {
		if got := sortColumn(input); got != want {
			t.Fatalf("sortColumn(%q) = %q, want %q", input, got, want)
		}
	}

	orders := map[string]string{
		"asc":        "ASC",
		"desc":       "DESC",
		"":           "DESC",
		"ASC; DROP":  "DESC",
		"descending": "DESC",
	}
	for input, want := range orders {
		if got := sortOrder(input); got != want {
			t.Fatalf("sortOrder(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildQueryUnknownSortMatchesDefault(t *testing.T) {
	base, _ := buildQuery(Filters{SortBy: "created_at_utc", SortOrder: "desc"}, DashboardLimit)
	hostile, _ := buildQuery(Filters{SortBy: "1; DELETE FROM admin", SortOrder: "raw"}, DashboardLimit)
	if base != hostile {
		t.Fatalf("unknown sort must produce the default query\n base: %s\n hostile: %s", base, hostile)
	}
	if strings.Contains(hostile, "DELETE") {
		t.Fatalf("user input leaked into query text: %s", hostile)
	}
}

func TestBuildQueryFilters(t *testing.T) {
	f := Filters{
		DateFrom:  "2026-08-01",
		DateTo:    "2026-08-29",
		StudentID: "7",
		Type:      "check_in",
		SortBy:    "student_name",
		SortOrder: "asc",
	}
	query, args := buildQuery(f, DashboardLimit)

	if len(args) != 5 {
		t.Fatalf("expected 5 bound args (4 filters + limit), got %d: %v", len(args), args)
	}
	if args[0] != "2026-08-01" || args[1] != "2026-08-29" || args[2] != "7" || args[3] != "check_in" {
		t.Fatalf("filter args out of order: %v", args)
	}
	if args[4] != DashboardLimit {
		t.Fatalf("expected limit %d as final arg, got %v", DashboardLimit, args[4])
	}
	if !strings.Contains(query, "ORDER BY s.name ASC") {
		t.Fatalf("expected ORDER BY s.name ASC in: %s", query)
	}
	if !strings.Contains(query, "LEFT JOIN students") {
		t.Fatalf("expected left join in: %s", query)
	}
	if !strings.Contains(query, "LIMIT $5") {
		t.Fatalf("expected LIMIT $5 in: %s", query)
	}
}

func TestBuildQueryExportHasNoLimit(t *testing.T) {
	query, args := buildQuery(Filters{}, 0)
	if strings.Contains(query, "LIMIT") {
		t.Fatalf("export query must be uncapped: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args for empty filters, got %v", args)
	}
	if !strings.Contains(query, "ORDER BY a.created_at_utc DESC") {
		t.Fatalf("expected default ordering in: %s", query)
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []string{TypeCheckIn, TypeCheckOut} {
		if !ValidType(typ) {
			t.Fatalf("expected %q to be valid", typ)
		}
	}
	for _, typ := range []string{"", "checkin", "CHECK_IN", "lunch"} {
		if ValidType(typ) {
			t.Fatalf("expected %q to be rejected", typ)
		}
	}
}
