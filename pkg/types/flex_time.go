package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// millisThreshold splits epoch seconds from epoch milliseconds. Any numeric
// value above it is treated as milliseconds; the crossover sits in 33658 CE
// for seconds and 1971 CE for milliseconds, so real inputs never straddle it.
const millisThreshold = 1e12

// FlexTime is the single timestamp type accepted at the JSON boundary.
// Historical clients sent RFC 3339 strings, raw epoch seconds, epoch
// milliseconds, and serialized timestamp objects; all of them decode here
// and always encode back out as RFC 3339 UTC.
type FlexTime struct {
	time.Time
}

// NewFlexTime wraps t, truncated to UTC.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t.UTC()}
}

// MarshalJSON always emits RFC 3339 in UTC, regardless of input shape.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 strings, epoch seconds, epoch milliseconds,
// and {"seconds": N, "nanoseconds": M} objects (with or without a leading
// underscore on the keys).
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		f.Time = time.Time{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		return f.unmarshalString(trimmed)
	case '{':
		return f.unmarshalObject(data)
	default:
		return f.unmarshalNumber(trimmed)
	}
}

func (f *FlexTime) unmarshalString(trimmed string) error {
	var raw string
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return fmt.Errorf("flextime: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			f.Time = parsed.UTC()
			return nil
		}
	}

	// Some clients stringify the epoch value.
	if epoch, err := strconv.ParseFloat(raw, 64); err == nil {
		f.Time = fromEpoch(epoch)
		return nil
	}

	return fmt.Errorf("flextime: unrecognized timestamp %q", raw)
}

func (f *FlexTime) unmarshalNumber(trimmed string) error {
	epoch, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("flextime: unrecognized timestamp %q", trimmed)
	}
	f.Time = fromEpoch(epoch)
	return nil
}

func (f *FlexTime) unmarshalObject(data []byte) error {
	var obj struct {
		Seconds      *int64 `json:"seconds"`
		Nanoseconds  int64  `json:"nanoseconds"`
		USeconds     *int64 `json:"_seconds"`
		UNanoseconds int64  `json:"_nanoseconds"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("flextime: %w", err)
	}

	switch {
	case obj.Seconds != nil:
		f.Time = time.Unix(*obj.Seconds, obj.Nanoseconds).UTC()
	case obj.USeconds != nil:
		f.Time = time.Unix(*obj.USeconds, obj.UNanoseconds).UTC()
	default:
		return fmt.Errorf("flextime: timestamp object missing seconds")
	}
	return nil
}

func fromEpoch(epoch float64) time.Time {
	if epoch > millisThreshold {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
