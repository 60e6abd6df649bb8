package enums

import "fmt"

// AccountTier governs listing duration and offer-expiry choices.
type AccountTier string

const (
	AccountTierFree    AccountTier = "free"
	AccountTierPremium AccountTier = "premium"
)

var validAccountTiers = []AccountTier{
	AccountTierFree,
	AccountTierPremium,
}

// String implements fmt.Stringer.
func (a AccountTier) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountTier.
func (a AccountTier) IsValid() bool {
	for _, candidate := range validAccountTiers {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountTier converts raw input into an AccountTier.
func ParseAccountTier(value string) (AccountTier, error) {
	for _, candidate := range validAccountTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account tier %q", value)
}
