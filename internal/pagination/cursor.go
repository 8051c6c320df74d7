// Package pagination implements the opaque keyset cursor used by the listing
// endpoints. Listings are ordered by (earliest departure ASC, id ASC); the
// cursor carries the last seen (timestamp, id) pair so the next page resumes
// strictly after it without OFFSET scans.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

const (
	// DefaultLimit is used when the caller does not specify a page size.
	DefaultLimit = 20
	// MaxLimit bounds the page size.
	MaxLimit = 50
)

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the decoded position of the last row of the previous page.
type Cursor struct {
	Time time.Time
	ID   string
}

type cursorPayload struct {
	T int64  `json:"t"` // unix microseconds
	I string `json:"i"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	data, _ := json.Marshal(cursorPayload{T: c.Time.UnixMicro(), I: c.ID})
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token produced by Encode. An empty token yields nil,
// meaning "first page".
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var p cursorPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, ErrInvalidCursor
	}
	if p.I == "" {
		return nil, ErrInvalidCursor
	}

	return &Cursor{Time: time.UnixMicro(p.T).UTC(), ID: p.I}, nil
}

// ClampLimit normalizes a requested page size into [1, MaxLimit], applying
// DefaultLimit when unset.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
