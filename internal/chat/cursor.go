package chat

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"automarket/chat/internal/models"
)

// Cursor marks a position in a room's message log. Its encoded form is opaque to clients.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// CursorFor returns the cursor positioned at m.
func CursorFor(m models.Message) Cursor {
	return Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
}

// Encode returns the opaque string form.
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + ":" + strconv.FormatUint(uint64(c.ID), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by Encode.
func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidArgument)
	}
	ts, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidArgument)
	}
	micros, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidArgument)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return Cursor{}, fmt.Errorf("%w: malformed cursor", ErrInvalidArgument)
	}
	return Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: uint(n)}, nil
}
