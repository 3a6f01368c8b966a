package handlers

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	month, err := parseMonth("2026-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("expected %s, got %s", want, month)
	}

	for _, bad := range []string{"", "2026", "2026-13", "march"} {
		if _, err := parseMonth(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate(" 2026-02-28 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Format(dateLayout) != "2026-02-28" {
		t.Fatalf("unexpected date %s", parsed)
	}

	if _, err := parseDate("28.02.2026"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}
