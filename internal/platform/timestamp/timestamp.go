// Package timestamp resolves the absolute time of a persisted record.
package timestamp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "mamatimer/internal/platform/errors"
)

var legacyLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// Resolve prefers the explicit epoch-millisecond field. Records written before
// that field existed fall back to their id: "<startMs>_<endMs>", RFC 3339, or a
// local "YYYY-MM-DD HH:mm[:ss]" string.
func Resolve(epochMS int64, id string, loc *time.Location) (time.Time, error) {
	if epochMS > 0 {
		return time.UnixMilli(epochMS), nil
	}
	raw := strings.TrimSpace(id)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty id", apperrors.ErrInvalidTimestamp)
	}
	head, _, _ := strings.Cut(raw, "_")
	if ms, err := strconv.ParseInt(head, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidTimestamp, raw)
}

// Millis converts t to the persisted epoch-millisecond form; zero stays zero.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
