package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/backend"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
)

func TestParseAsOf(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	now := time.Date(2026, 3, 18, 14, 30, 5, 0, loc)

	got, err := parseAsOf("", now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("parseAsOf(\"\") = %v, %v; want now", got, err)
	}

	got, err = parseAsOf("2026-02-01", now)
	if err != nil {
		t.Fatalf("parseAsOf: %v", err)
	}
	want := time.Date(2026, 2, 1, 14, 30, 5, 0, loc)
	if !got.Equal(want) {
		t.Errorf("parseAsOf = %v, want %v", got, want)
	}

	for _, bad := range []string{"2026-2-1", "yesterday", "2026-02-30"} {
		_, err := parseAsOf(bad, now)
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("parseAsOf(%q) err = %v, want ValidationError", bad, err)
		}
	}
}

func TestMonthFlag(t *testing.T) {
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)

	ym, err := monthFlag("", now)
	if err != nil || ym != (pipeline.YearMonth{Year: 2026, Month: time.March}) {
		t.Errorf("monthFlag(\"\") = %v, %v", ym, err)
	}
	ym, err = monthFlag(" 2025-11 ", now)
	if err != nil || ym != (pipeline.YearMonth{Year: 2025, Month: time.November}) {
		t.Errorf("monthFlag(2025-11) = %v, %v", ym, err)
	}
	if _, err := monthFlag("November", now); err == nil {
		t.Error("monthFlag(November) should fail")
	}
}

func TestMonthAsOf(t *testing.T) {
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)

	if got := monthAsOf(pipeline.YearMonth{Year: 2026, Month: time.March}, now); !got.Equal(now) {
		t.Errorf("current month = %v, want now", got)
	}
	got := monthAsOf(pipeline.YearMonth{Year: 2026, Month: time.February}, now)
	if got.Year() != 2026 || got.Month() != time.February || got.Day() != 28 {
		t.Errorf("past month = %v, want 2026-02-28", got)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &model.ValidationError{Fields: []string{"amount"}}, "validation failed: missing or invalid amount"},
		{"not logged in", fmt.Errorf("ledger: %w", backend.ErrNotLoggedIn), "not logged in: run `gagyelog login` first"},
		{"unauthorized", backend.ErrUnauthorized, "session rejected by the backend: run `gagyelog login` again"},
		{"wrong password", backend.ErrWrongPassword, "current password is incorrect: nothing was changed"},
		{"no account", backend.ErrNoAccount, "no account matches: check the name used at signup"},
		{"timeout", context.DeadlineExceeded, "request failed: backend did not answer in time"},
		{"interrupt", context.Canceled, "interrupted"},
		{"api", &backend.APIError{Method: "GET", Path: "/x", Status: 500, Message: "boom"}, "request failed: backend: GET /x: 500 boom"},
		{"other", errors.New("disk full"), "error: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeError(tt.err); got != tt.want {
				t.Errorf("describeError = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "abc", ""} {
		var ve *model.ValidationError
		if _, err := parseID(bad); !errors.As(err, &ve) {
			t.Errorf("parseID(%q) err = %v, want ValidationError", bad, err)
		}
	}
}
