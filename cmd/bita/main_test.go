package main

import (
	"strings"
	"testing"
)

func TestParseEventDate(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339", "2024-03-01T09:00:00Z", "2024-03-01T09:00:00.000Z"},
		{"date and time", "2024-03-01 09:00", "2024-03-01T09:00:00.000Z"},
		{"date only", "2024-03-01", "2024-03-01T00:00:00.000Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseEventDate(tc.raw)
			if err != nil {
				t.Fatalf("parseEventDate(%q) error = %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("parseEventDate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}

	t.Run("error lists every accepted layout", func(t *testing.T) {
		_, err := parseEventDate("yesterday")
		if err == nil {
			t.Fatal("parseEventDate() expected error")
		}
		for _, layout := range []string{"RFC3339", "2006-01-02 15:04", "'2006-01-02'"} {
			if !strings.Contains(err.Error(), layout) {
				t.Errorf("error %q does not mention %s", err, layout)
			}
		}
	})
}
