package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateListing      OutboxAggregateType = "listing"
	AggregateOffer        OutboxAggregateType = "offer"
	AggregateOrder        OutboxAggregateType = "order"
	AggregateWantedPost   OutboxAggregateType = "wanted_post"
	AggregateNotification OutboxAggregateType = "notification"
	AggregateMessage      OutboxAggregateType = "message"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateListing,
	AggregateOffer,
	AggregateOrder,
	AggregateWantedPost,
	AggregateNotification,
	AggregateMessage,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventListingArchived OutboxEventType = "listing_archived"
	EventListingPurged   OutboxEventType = "listing_purged"
	EventListingSold     OutboxEventType = "listing_sold"
	EventOfferCreated    OutboxEventType = "offer_created"
	EventOfferAccepted   OutboxEventType = "offer_accepted"
	EventOfferDeclined   OutboxEventType = "offer_declined"
	EventOfferCountered  OutboxEventType = "offer_countered"
	EventOfferCancelled  OutboxEventType = "offer_cancelled"
	EventOfferExpired    OutboxEventType = "offer_expired"
	EventOrderCreated    OutboxEventType = "order_created"
	EventMessageSent     OutboxEventType = "message_sent"
)

var validOutboxEventTypes = []OutboxEventType{
	EventListingArchived,
	EventListingPurged,
	EventListingSold,
	EventOfferCreated,
	EventOfferAccepted,
	EventOfferDeclined,
	EventOfferCountered,
	EventOfferCancelled,
	EventOfferExpired,
	EventOrderCreated,
	EventMessageSent,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
