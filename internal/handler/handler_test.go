package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFiltersFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET",
		"/admin?date_from=2026-08-01&date_to=2026-08-29&student_filter=7&type_filter=check_in&sort_by=student_name&sort_order=asc", nil)

	f := filtersFromQuery(c)
	if f.DateFrom != "2026-08-01" || f.DateTo != "2026-08-29" {
		t.Fatalf("date range = %q..%q", f.DateFrom, f.DateTo)
	}
	if f.StudentID != "7" || f.Type != "check_in" {
		t.Fatalf("student/type = %q/%q", f.StudentID, f.Type)
	}
	if f.SortBy != "student_name" || f.SortOrder != "asc" {
		t.Fatalf("sort = %q %q", f.SortBy, f.SortOrder)
	}
}

func TestFiltersFromQueryDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/admin", nil)

	f := filtersFromQuery(c)
	if f.SortBy != "created_at_utc" {
		t.Fatalf("default sort_by = %q, want created_at_utc", f.SortBy)
	}
	if f.SortOrder != "desc" {
		t.Fatalf("default sort_order = %q, want desc", f.SortOrder)
	}
	if f.DateFrom != "" || f.DateTo != "" || f.StudentID != "" || f.Type != "" {
		t.Fatalf("expected empty filters, got %+v", f)
	}
}
