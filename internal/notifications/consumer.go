package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/idempotency"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/registry"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

const (
	notificationConsumer  = "notification-worker"
	currentPayloadVersion = 1
)

// payloadDecoders lists the event payloads this consumer understands.
// Events or versions outside the registry are acked and skipped.
var payloadDecoders = newPayloadDecoders()

func newPayloadDecoders() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventOfferCreated, currentPayloadVersion, decodeAs[payloads.OfferCreatedEvent])
	for _, eventType := range []enums.OutboxEventType{
		enums.EventOfferAccepted,
		enums.EventOfferDeclined,
		enums.EventOfferExpired,
		enums.EventOfferCountered,
		enums.EventOfferCancelled,
	} {
		decoders.Register(eventType, currentPayloadVersion, decodeAs[payloads.OfferDecisionEvent])
	}
	decoders.Register(enums.EventOrderCreated, currentPayloadVersion, decodeAs[payloads.OrderCreatedEvent])
	decoders.Register(enums.EventListingArchived, currentPayloadVersion, decodeAs[payloads.ListingArchivedEvent])
	decoders.Register(enums.EventMessageSent, currentPayloadVersion, decodeAs[payloads.MessageSentEvent])
	return decoders
}

func decodeAs[T any](data json.RawMessage) (any, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and fans them out as in-app
// notifications for the affected user.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := buildNotification(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notification", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event type has no notification mapping")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to persist notification", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithField(logCtx, "user_id", notification.UserID.String()), "notification created")
	return processResult{ack: true}
}

// buildNotification maps a domain event onto the notification row for
// the user who should hear about it. A nil result means the event does
// not fan out, either by type or by an unknown payload version.
func buildNotification(eventType enums.OutboxEventType, version int, data json.RawMessage) (*models.Notification, error) {
	if !payloadDecoders.Registered(eventType, version) {
		return nil, nil
	}
	decoded, err := payloadDecoders.Decode(eventType, version, data)
	if err != nil {
		return nil, err
	}

	switch payload := decoded.(type) {
	case payloads.OfferCreatedEvent:
		return &models.Notification{
			UserID:  payload.SellerID,
			Type:    enums.NotificationTypeOfferReceived,
			Title:   "New offer received",
			Message: fmt.Sprintf("You received a %s offer on your listing.", formatCents(payload.AmountCents)),
			Data: jsonData(map[string]any{
				"offer_id":   payload.OfferID.String(),
				"listing_id": payload.ListingID.String(),
			}),
		}, nil

	case payloads.OfferDecisionEvent:
		return offerDecisionNotification(eventType, payload), nil

	case payloads.OrderCreatedEvent:
		return &models.Notification{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOrderCreated,
			Title:   "Order created",
			Message: fmt.Sprintf("The seller created a %s order from your accepted offer.", formatCents(payload.AmountCents)),
			Data: jsonData(map[string]any{
				"order_id":   payload.OrderID.String(),
				"listing_id": payload.ListingID.String(),
			}),
		}, nil

	case payloads.ListingArchivedEvent:
		return &models.Notification{
			UserID:  payload.SellerID,
			Type:    enums.NotificationTypeListingArchived,
			Title:   "Listing archived",
			Message: fmt.Sprintf("Your listing %q was archived (%s).", payload.Title, payload.Reason),
			Data: jsonData(map[string]any{
				"listing_id": payload.ListingID.String(),
				"reason":     string(payload.Reason),
			}),
		}, nil

	case payloads.MessageSentEvent:
		return &models.Notification{
			UserID:  payload.RecipientID,
			Type:    enums.NotificationTypeMessageReceived,
			Title:   "New message",
			Message: payload.Preview,
			Data: jsonData(map[string]any{
				"thread_key": payload.ThreadKey,
				"sender_id":  payload.SenderID.String(),
			}),
		}, nil

	default:
		return nil, nil
	}
}

func offerDecisionNotification(eventType enums.OutboxEventType, payload payloads.OfferDecisionEvent) *models.Notification {
	data := jsonData(map[string]any{
		"offer_id":   payload.OfferID.String(),
		"listing_id": payload.ListingID.String(),
	})

	switch eventType {
	case enums.EventOfferAccepted:
		return &models.Notification{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOfferAccepted,
			Title:   "Offer accepted",
			Message: fmt.Sprintf("Your %s offer was accepted.", formatCents(payload.AmountCents)),
			Data:    data,
		}
	case enums.EventOfferDeclined:
		return &models.Notification{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOfferDeclined,
			Title:   "Offer declined",
			Message: fmt.Sprintf("Your %s offer was declined.", formatCents(payload.AmountCents)),
			Data:    data,
		}
	case enums.EventOfferExpired:
		return &models.Notification{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOfferExpired,
			Title:   "Offer expired",
			Message: fmt.Sprintf("Your %s offer expired without a response.", formatCents(payload.AmountCents)),
			Data:    data,
		}
	case enums.EventOfferCountered:
		return &models.Notification{
			UserID:  payload.BuyerID,
			Type:    enums.NotificationTypeOfferCountered,
			Title:   "Counter offer received",
			Message: fmt.Sprintf("The seller countered with %s.", formatCents(payload.AmountCents)),
			Data:    data,
		}
	case enums.EventOfferCancelled:
		return &models.Notification{
			UserID:  payload.SellerID,
			Type:    enums.NotificationTypeOfferDeclined,
			Title:   "Offer withdrawn",
			Message: fmt.Sprintf("The buyer withdrew their %s offer.", formatCents(payload.AmountCents)),
			Data:    data,
		}
	default:
		return nil
	}
}

func jsonData(values map[string]any) *types.JSONMap {
	data := types.JSONMap(values)
	return &data
}

func formatCents(amount int64) string {
	return "$" + decimal.NewFromInt(amount).Shift(-2).StringFixed(2)
}
