package orders

import (
	"testing"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

func acceptedOffer(amountCents int64) *models.Offer {
	return &models.Offer{
		ID:          uuid.New(),
		ListingID:   uuid.New(),
		BuyerID:     uuid.New(),
		SellerID:    uuid.New(),
		AmountCents: amountCents,
		Status:      enums.OfferStatusAccepted,
		ListingSnapshot: &types.ListingSnapshot{
			Title:      "Blue-Eyes White Dragon",
			PriceCents: 5_000,
		},
	}
}

func TestBuildOrderPickup(t *testing.T) {
	offer := acceptedOffer(4_500)
	offer.IsPickup = true
	offer.ShippingAddress = &types.Address{Line1: "1 Card St", City: "Austin", State: "TX", PostalCode: "78701"}

	order := buildOrder(offer, false)
	if order.AmountCents != 4_500 {
		t.Fatalf("amount = %d, want the accepted offer amount 4500", order.AmountCents)
	}
	if order.FulfillmentMethod != enums.FulfillmentPickup {
		t.Fatalf("fulfillment = %s, want pickup", order.FulfillmentMethod)
	}
	if order.PaymentRequired {
		t.Fatal("pickup orders must not require payment")
	}
	if order.ShippingAddress != nil {
		t.Fatal("pickup orders carry no shipping address")
	}
}

func TestBuildOrderShippingWithAddress(t *testing.T) {
	offer := acceptedOffer(6_000)
	offer.ShippingAddress = &types.Address{Line1: "1 Card St", City: "Austin", State: "TX", PostalCode: "78701"}

	order := buildOrder(offer, true)
	if order.FulfillmentMethod != enums.FulfillmentShipping {
		t.Fatalf("fulfillment = %s, want shipping", order.FulfillmentMethod)
	}
	if !order.PaymentRequired {
		t.Fatal("shipping orders require payment")
	}
	if order.ShippingAddress == nil || order.ShippingAddress.Line1 != "1 Card St" {
		t.Fatal("shipping address should come from the offer")
	}
	if !order.SellerHasStripeAccount {
		t.Fatal("payout flag should pass through")
	}
	if order.OfferID == nil || *order.OfferID != offer.ID {
		t.Fatal("order must back-reference its offer")
	}
}

func TestBuildOrderShippingWithoutAddressIsPending(t *testing.T) {
	offer := acceptedOffer(6_000)
	offer.RequiresShippingInfo = true

	order := buildOrder(offer, false)
	if order.ShippingAddress != nil {
		t.Fatal("no address collected yet")
	}

	dto := NewOrderDTO(order)
	if !dto.ShippingPending {
		t.Fatal("DTO should flag the missing shipping address")
	}
}

func TestBuildOrderCarriesSnapshot(t *testing.T) {
	offer := acceptedOffer(4_500)
	order := buildOrder(offer, false)
	if order.ListingSnapshot == nil || order.ListingSnapshot.Title != "Blue-Eyes White Dragon" {
		t.Fatal("order must keep the offer's listing snapshot")
	}
}
