package enums

import "fmt"

// WantedPostStatus maps to the wanted_post_status enum in Postgres.
type WantedPostStatus string

const (
	WantedPostActive    WantedPostStatus = "active"
	WantedPostFulfilled WantedPostStatus = "fulfilled"
	WantedPostRemoved   WantedPostStatus = "removed"
)

var validWantedPostStatuses = []WantedPostStatus{
	WantedPostActive,
	WantedPostFulfilled,
	WantedPostRemoved,
}

func (s WantedPostStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical wanted_post_status enum.
func (s WantedPostStatus) IsValid() bool {
	for _, candidate := range validWantedPostStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWantedPostStatus converts raw input into WantedPostStatus.
func ParseWantedPostStatus(value string) (WantedPostStatus, error) {
	for _, candidate := range validWantedPostStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wanted post status %q", value)
}
