package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexTimeUnmarshalShapes(t *testing.T) {
	want := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	cases := []struct {
		name  string
		input string
	}{
		{"rfc3339", `"2026-03-14T15:09:26Z"`},
		{"rfc3339_offset", `"2026-03-14T10:09:26-05:00"`},
		{"epoch_seconds", `1773500966`},
		{"epoch_millis", `1773500966000`},
		{"epoch_string", `"1773500966"`},
		{"seconds_object", `{"seconds":1773500966,"nanoseconds":0}`},
		{"underscore_object", `{"_seconds":1773500966,"_nanoseconds":0}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ft FlexTime
			if err := json.Unmarshal([]byte(tc.input), &ft); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.input, err)
			}
			if !ft.Time.Equal(want) {
				t.Fatalf("got %s want %s", ft.Time, want)
			}
		})
	}
}

func TestFlexTimeUnmarshalNull(t *testing.T) {
	var ft FlexTime
	if err := json.Unmarshal([]byte("null"), &ft); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !ft.IsZero() {
		t.Fatalf("expected zero time, got %s", ft.Time)
	}
}

func TestFlexTimeUnmarshalRejectsGarbage(t *testing.T) {
	var ft FlexTime
	if err := json.Unmarshal([]byte(`"next tuesday"`), &ft); err == nil {
		t.Fatal("expected error for unrecognized timestamp")
	}
	if err := json.Unmarshal([]byte(`{"minutes":5}`), &ft); err == nil {
		t.Fatal("expected error for object without seconds")
	}
}

func TestFlexTimeMarshalCanonical(t *testing.T) {
	ft := NewFlexTime(time.Date(2026, 3, 14, 10, 9, 26, 0, time.FixedZone("EST", -5*3600)))
	out, err := json.Marshal(ft)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2026-03-14T15:09:26Z"` {
		t.Fatalf("got %s", out)
	}

	var zero FlexTime
	out, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("got %s want null", out)
	}
}
