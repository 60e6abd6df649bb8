package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOfferReceived   NotificationType = "offer_received"
	NotificationTypeOfferAccepted   NotificationType = "offer_accepted"
	NotificationTypeOfferDeclined   NotificationType = "offer_declined"
	NotificationTypeOfferCountered  NotificationType = "offer_countered"
	NotificationTypeOfferExpired    NotificationType = "offer_expired"
	NotificationTypeOrderCreated    NotificationType = "order_created"
	NotificationTypeListingArchived NotificationType = "listing_archived"
	NotificationTypeMessageReceived NotificationType = "message_received"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOfferReceived,
	NotificationTypeOfferAccepted,
	NotificationTypeOfferDeclined,
	NotificationTypeOfferCountered,
	NotificationTypeOfferExpired,
	NotificationTypeOrderCreated,
	NotificationTypeListingArchived,
	NotificationTypeMessageReceived,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
