package offers

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
)

type fakeListingLoader struct {
	listing *models.Listing
	err     error
}

func (f *fakeListingLoader) FindByID(context.Context, uuid.UUID) (*models.Listing, error) {
	return f.listing, f.err
}

type fakeUserLoader struct {
	user *models.User
	err  error
}

func (f *fakeUserLoader) FindByID(context.Context, uuid.UUID) (*models.User, error) {
	return f.user, f.err
}

func testService(t *testing.T, listings listingLoader, users userLoader) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "offers-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(nil),
		ListingRepo: listings,
		UserRepo:    users,
		DBClient:    &dbpkg.Client{},
		Outbox:      outbox.NewService(nil, logg),
		Logger:      logg,
		Offers: config.OffersConfig{
			AbsoluteCeilingCents: 5_000_000,
			DefaultExpiryHrs:     24,
			PriceMultipleCap:     2,
			PremiumExpiryHrs:     []int{24, 48, 72, 168},
		},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func activeListing(sellerID uuid.UUID, priceCents int64) *models.Listing {
	return &models.Listing{
		ID:         uuid.New(),
		SellerID:   sellerID,
		Title:      "Charizard Holo",
		Game:       enums.GameCategoryPokemon,
		Condition:  enums.CardConditionNearMint,
		PriceCents: priceCents,
		Status:     enums.ListingStatusActive,
	}
}

func wantCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("code = %s, want %s (message %q)", appErr.Code(), code, appErr.Message())
	}
}

func TestCreateRejectsNonPositiveAmounts(t *testing.T) {
	svc := testService(t, &fakeListingLoader{}, &fakeUserLoader{})

	for _, amount := range []int64{0, -500} {
		_, err := svc.Create(context.Background(), uuid.New(), CreateOfferInput{
			ListingID:   uuid.New(),
			AmountCents: amount,
		})
		wantCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestCreateRejectsAmountsOverCeiling(t *testing.T) {
	svc := testService(t, &fakeListingLoader{}, &fakeUserLoader{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateOfferInput{
		ListingID:   uuid.New(),
		AmountCents: 5_000_001,
	})
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateCapsAgainstServerVerifiedPrice(t *testing.T) {
	sellerID := uuid.New()
	// Listing priced $50: ceiling for offers is $100 no matter what the
	// client believes the price to be.
	listing := activeListing(sellerID, 5_000)
	svc := testService(t, &fakeListingLoader{listing: listing}, &fakeUserLoader{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateOfferInput{
		ListingID:   listing.ID,
		AmountCents: 15_000,
	})
	wantCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsSelfOffers(t *testing.T) {
	sellerID := uuid.New()
	listing := activeListing(sellerID, 5_000)
	svc := testService(t, &fakeListingLoader{listing: listing}, &fakeUserLoader{})

	_, err := svc.Create(context.Background(), sellerID, CreateOfferInput{
		ListingID:   listing.ID,
		AmountCents: 4_500,
	})
	wantCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateRejectsInactiveListings(t *testing.T) {
	listing := activeListing(uuid.New(), 5_000)
	listing.Status = enums.ListingStatusArchived
	svc := testService(t, &fakeListingLoader{listing: listing}, &fakeUserLoader{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateOfferInput{
		ListingID:   listing.ID,
		AmountCents: 4_500,
	})
	wantCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateMissingListingIsNotFound(t *testing.T) {
	svc := testService(t, &fakeListingLoader{err: gorm.ErrRecordNotFound}, &fakeUserLoader{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateOfferInput{
		ListingID:   uuid.New(),
		AmountCents: 4_500,
	})
	wantCode(t, err, pkgerrors.CodeNotFound)
}

func TestResolveExpiryHours(t *testing.T) {
	svc := testService(t, &fakeListingLoader{}, &fakeUserLoader{}).(*service)

	hours, err := svc.resolveExpiryHours(enums.AccountTierFree, nil)
	if err != nil || hours != 24 {
		t.Fatalf("free default = %d, %v; want 24, nil", hours, err)
	}

	if _, err := svc.resolveExpiryHours(enums.AccountTierFree, intPtr(72)); err == nil {
		t.Fatal("free tier custom expiry should be rejected")
	}

	hours, err = svc.resolveExpiryHours(enums.AccountTierPremium, intPtr(168))
	if err != nil || hours != 168 {
		t.Fatalf("premium 168h = %d, %v; want 168, nil", hours, err)
	}

	if _, err := svc.resolveExpiryHours(enums.AccountTierPremium, intPtr(96)); err == nil {
		t.Fatal("unlisted expiry window should be rejected")
	}
}

func TestProposerAndResponder(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	original := &models.Offer{BuyerID: buyerID, SellerID: sellerID}
	if proposerOf(original) != buyerID || responderOf(original) != sellerID {
		t.Fatal("original offer: buyer proposes, seller responds")
	}

	parentID := uuid.New()
	counter := &models.Offer{BuyerID: buyerID, SellerID: sellerID, ParentOfferID: &parentID}
	if proposerOf(counter) != sellerID || responderOf(counter) != buyerID {
		t.Fatal("counter offer: seller proposes, buyer responds")
	}
}

func TestSnapshotIsBuiltFromListingRow(t *testing.T) {
	listing := activeListing(uuid.New(), 5_000)
	listing.Images = pq.StringArray{"https://cdn.cardbinder.test/card.jpg", "https://cdn.cardbinder.test/back.jpg"}

	snapshot := snapshotOf(listing)
	if snapshot.PriceCents != 5_000 {
		t.Fatalf("snapshot price = %d, want server price 5000", snapshot.PriceCents)
	}
	if snapshot.Title != listing.Title || snapshot.SellerID != listing.SellerID {
		t.Fatalf("snapshot = %+v does not mirror the listing", snapshot)
	}
	if snapshot.ImageURL == nil || *snapshot.ImageURL != listing.Images[0] {
		t.Fatal("snapshot should carry the primary image")
	}
}

func intPtr(v int) *int { return &v }
