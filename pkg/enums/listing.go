package enums

import "fmt"

// ListingStatus tracks the lifecycle of a marketplace listing.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusExpired  ListingStatus = "expired"
	ListingStatusArchived ListingStatus = "archived"
	ListingStatusSold     ListingStatus = "sold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusActive,
	ListingStatusInactive,
	ListingStatusExpired,
	ListingStatusArchived,
	ListingStatusSold,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// ExpirationReason records why a listing was archived.
type ExpirationReason string

const (
	ExpirationReasonTierDurationExceeded ExpirationReason = "tier_duration_exceeded"
	ExpirationReasonInactiveTimeout      ExpirationReason = "inactive_timeout"
	ExpirationReasonManualArchive        ExpirationReason = "manual_archive"
)

var validExpirationReasons = []ExpirationReason{
	ExpirationReasonTierDurationExceeded,
	ExpirationReasonInactiveTimeout,
	ExpirationReasonManualArchive,
}

// String implements fmt.Stringer.
func (r ExpirationReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ExpirationReason.
func (r ExpirationReason) IsValid() bool {
	for _, candidate := range validExpirationReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseExpirationReason converts raw input into an ExpirationReason.
func ParseExpirationReason(value string) (ExpirationReason, error) {
	for _, candidate := range validExpirationReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expiration reason %q", value)
}
