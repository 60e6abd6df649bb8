package notifications

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
)

func marshalPayload(t *testing.T, payload any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestBuildNotificationOfferCreatedTargetsSeller(t *testing.T) {
	sellerID := uuid.New()
	data := marshalPayload(t, payloads.OfferCreatedEvent{
		OfferID:     uuid.New(),
		ListingID:   uuid.New(),
		BuyerID:     uuid.New(),
		SellerID:    sellerID,
		AmountCents: 4_500,
	})

	notification, err := buildNotification(enums.EventOfferCreated, 1, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notification == nil {
		t.Fatalf("expected a notification")
	}
	if notification.UserID != sellerID {
		t.Fatalf("expected seller to be notified")
	}
	if notification.Type != enums.NotificationTypeOfferReceived {
		t.Fatalf("unexpected type %s", notification.Type)
	}
	if notification.Message != "You received a $45.00 offer on your listing." {
		t.Fatalf("unexpected message %q", notification.Message)
	}
}

func TestBuildNotificationDecisionTargets(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	data := marshalPayload(t, payloads.OfferDecisionEvent{
		OfferID:     uuid.New(),
		ListingID:   uuid.New(),
		BuyerID:     buyerID,
		SellerID:    sellerID,
		AmountCents: 6_000,
	})

	cases := []struct {
		eventType enums.OutboxEventType
		wantUser  uuid.UUID
		wantType  enums.NotificationType
	}{
		{enums.EventOfferAccepted, buyerID, enums.NotificationTypeOfferAccepted},
		{enums.EventOfferDeclined, buyerID, enums.NotificationTypeOfferDeclined},
		{enums.EventOfferExpired, buyerID, enums.NotificationTypeOfferExpired},
		{enums.EventOfferCountered, buyerID, enums.NotificationTypeOfferCountered},
		{enums.EventOfferCancelled, sellerID, enums.NotificationTypeOfferDeclined},
	}

	for _, tc := range cases {
		notification, err := buildNotification(tc.eventType, 1, data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.eventType, err)
		}
		if notification == nil {
			t.Fatalf("%s: expected a notification", tc.eventType)
		}
		if notification.UserID != tc.wantUser {
			t.Fatalf("%s: wrong recipient", tc.eventType)
		}
		if notification.Type != tc.wantType {
			t.Fatalf("%s: wrong type %s", tc.eventType, notification.Type)
		}
	}
}

func TestBuildNotificationMessageSentUsesPreview(t *testing.T) {
	recipientID := uuid.New()
	data := marshalPayload(t, payloads.MessageSentEvent{
		MessageID:   uuid.New(),
		ThreadKey:   "a:b:direct",
		SenderID:    uuid.New(),
		RecipientID: recipientID,
		Preview:     "Is the Charizard still available?",
	})

	notification, err := buildNotification(enums.EventMessageSent, 1, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notification.UserID != recipientID {
		t.Fatalf("expected recipient to be notified")
	}
	if notification.Message != "Is the Charizard still available?" {
		t.Fatalf("unexpected message %q", notification.Message)
	}
}

func TestBuildNotificationUnmappedEventIsSkipped(t *testing.T) {
	notification, err := buildNotification(enums.EventListingPurged, 1, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notification != nil {
		t.Fatalf("expected purge events to be skipped")
	}
}

func TestBuildNotificationUnknownVersionIsSkipped(t *testing.T) {
	notification, err := buildNotification(enums.EventMessageSent, 2, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notification != nil {
		t.Fatalf("expected unknown payload versions to be skipped")
	}
}
