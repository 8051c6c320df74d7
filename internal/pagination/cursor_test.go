package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestCursor_RoundTrip(t *testing.T) {
	t.Parallel()

	// Microsecond precision is what the token carries.
	ts := time.Date(2026, 3, 14, 15, 9, 26, 535_000, time.UTC)
	token := Cursor{Time: ts, ID: "ride-42"}.Encode()

	got, err := Decode(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Time.Equal(ts) {
		t.Errorf("time mismatch: got %v, want %v", got.Time, ts)
	}
	if got.ID != "ride-42" {
		t.Errorf("id mismatch: got %q", got.ID)
	}
}

func TestDecode_EmptyToken_IsFirstPage(t *testing.T) {
	t.Parallel()

	c, err := Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != nil {
		t.Error("empty token must decode to nil")
	}
}

func TestDecode_InvalidTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		token string
	}{
		{"not base64", "!!not-base64!!"},
		{"not json", "bm90LWpzb24"},
		{"missing id", "eyJ0IjoxMjM0NSwiaSI6IiJ9"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tc.token)
			if !errors.Is(err, ErrInvalidCursor) {
				t.Errorf("expected ErrInvalidCursor, got %v", err)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{25, 25},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
		{1000, MaxLimit},
	}

	for _, tc := range cases {
		if got := ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
