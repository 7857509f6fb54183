package cmd

import (
	"strings"
	"testing"

	"github.com/gagyelog/gagyelog/internal/model"
)

func TestProfileSummary(t *testing.T) {
	got := profileSummary(model.Session{
		BaseURL:  "https://api.example.com",
		UserID:   7,
		Email:    "kim@example.com",
		UserName: "김가계",
	})
	for _, want := range []string{
		"Name:     김가계",
		"Email:    kim@example.com",
		"User ID:  7",
		"Backend:  https://api.example.com",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("profileSummary missing %q in:\n%s", want, got)
		}
	}

	empty := profileSummary(model.Session{UserID: 3})
	if !strings.Contains(empty, "Name:     -") || !strings.Contains(empty, "Email:    -") {
		t.Errorf("empty fields not dashed:\n%s", empty)
	}
}

func TestOrDefault(t *testing.T) {
	tests := []struct {
		in, def, want string
	}{
		{"코드가 전송되었습니다", "sent", "코드가 전송되었습니다"},
		{"", "sent", "sent"},
		{"   ", "sent", "sent"},
	}
	for _, tt := range tests {
		if got := orDefault(tt.in, tt.def); got != tt.want {
			t.Errorf("orDefault(%q, %q) = %q, want %q", tt.in, tt.def, got, tt.want)
		}
	}
}
