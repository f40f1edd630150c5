package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("kiosk-1", "rollcall", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens to be set")
	}

	claims, err := Parse(pair.AccessToken, "test-key", "rollcall")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "kiosk-1" {
		t.Fatalf("subject = %q, want kiosk-1", claims.Subject)
	}
	if claims.Role != "device" {
		t.Fatalf("role = %q, want device", claims.Role)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("kiosk-1", "rollcall", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "other-key", "rollcall"); err == nil {
		t.Fatalf("expected parse with wrong key to fail")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("kiosk-1", "someone-else", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "test-key", "rollcall"); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("kiosk-1", "rollcall", "test-key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := Parse(pair.AccessToken, "test-key", "rollcall"); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
