package enrollment

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh", 100 * time.Second, false},
		{"at validity", 600 * time.Second, false},
		{"inside grace", 659 * time.Second, false},
		{"exactly at cutoff", 660 * time.Second, false},
		{"just past cutoff", 661 * time.Second, true},
		{"long dead", 700 * time.Second, true},
	}
	for _, tc := range cases {
		created := now.Add(-tc.age)
		if got := expired(created, now); got != tc.want {
			t.Fatalf("%s: expired(age=%s) = %v, want %v", tc.name, tc.age, got, tc.want)
		}
	}
}

func TestExpiredTreatsNaiveTimestampsAsUTC(t *testing.T) {
	// A timestamp scanned without zone information must not be shifted by the
	// local zone before the age check.
	loc := time.FixedZone("display", 8*3600)
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	created := now.Add(-100 * time.Second).In(loc)
	if expired(created, now) {
		t.Fatalf("100s-old token reported expired after zone conversion")
	}
}

func TestNormalizeSubmission(t *testing.T) {
	cases := []struct {
		name, code string
		wantName   string
		wantCode   string
		ok         bool
	}{
		{"Jane Doe", "S123", "Jane Doe", "S123", true},
		{"  Jane Doe  ", " S123 ", "Jane Doe", "S123", true},
		{"", "S123", "", "", false},
		{"Jane Doe", "", "", "", false},
		{"   ", "S123", "", "", false},
		{"Jane Doe", "\t\n", "", "", false},
	}
	for _, tc := range cases {
		name, code, ok := normalizeSubmission(tc.name, tc.code)
		if ok != tc.ok {
			t.Fatalf("normalizeSubmission(%q, %q) ok = %v, want %v", tc.name, tc.code, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if name != tc.wantName || code != tc.wantCode {
			t.Fatalf("normalizeSubmission(%q, %q) = (%q, %q), want (%q, %q)",
				tc.name, tc.code, name, code, tc.wantName, tc.wantCode)
		}
	}
}
