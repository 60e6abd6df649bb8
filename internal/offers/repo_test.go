package offers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
)

// setupOffersTestDB mirrors the offers schema including the partial
// unique index, so the single-pending-offer rule is enforced the same
// way it is in production.
func setupOffersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  message TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  parent_offer_id TEXT,
  countered_by TEXT,
  listing_snapshot TEXT,
  is_pickup INTEGER NOT NULL DEFAULT 0,
  requires_shipping_info INTEGER NOT NULL DEFAULT 0,
  shipping_address TEXT,
  cleared INTEGER NOT NULL DEFAULT 0,
  expires_at DATETIME NOT NULL,
  responded_at DATETIME,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_one_pending
  ON offers (buyer_id, listing_id)
  WHERE status = 'pending';
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func pendingOffer(listingID, buyerID, sellerID uuid.UUID, amountCents int64) *models.Offer {
	return &models.Offer{
		ID:          uuid.New(),
		ListingID:   listingID,
		BuyerID:     buyerID,
		SellerID:    sellerID,
		AmountCents: amountCents,
		Status:      enums.OfferStatusPending,
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
	}
}

func TestCreateRejectsSecondPendingForSamePair(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	listingID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()

	_, err := repo.Create(ctx, pendingOffer(listingID, buyerID, sellerID, 4_000))
	require.NoError(t, err)

	_, err = repo.Create(ctx, pendingOffer(listingID, buyerID, sellerID, 4_500))
	assert.Error(t, err, "second pending offer for the same buyer and listing should hit the index")

	_, err = repo.Create(ctx, pendingOffer(uuid.New(), buyerID, sellerID, 4_500))
	assert.NoError(t, err, "a different listing is a different pair")

	declined := pendingOffer(listingID, buyerID, sellerID, 3_000)
	declined.Status = enums.OfferStatusDeclined
	_, err = repo.Create(ctx, declined)
	assert.NoError(t, err, "the index only guards pending rows")
}

func offersDBService(t *testing.T, db *gorm.DB, users userLoader) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "offers-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		ListingRepo: &fakeListingLoader{},
		UserRepo:    users,
		DBClient:    dbpkg.NewFromConn(db),
		Outbox:      outbox.NewService(nil, logg),
		Logger:      logg,
		Offers: config.OffersConfig{
			AbsoluteCeilingCents: 5_000_000,
			DefaultExpiryHrs:     24,
			PriceMultipleCap:     2,
			PremiumExpiryHrs:     []int{24, 48, 72, 168},
		},
	})
	require.NoError(t, err)
	return svc
}

func TestCounterSucceedsAgainstPendingIndex(t *testing.T) {
	db := setupOffersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	listingID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()

	parent, err := repo.Create(ctx, pendingOffer(listingID, buyerID, sellerID, 4_000))
	require.NoError(t, err)

	seller := &models.User{ID: sellerID, Tier: enums.AccountTierFree}
	svc := offersDBService(t, db, &fakeUserLoader{user: seller})

	dto, err := svc.Counter(ctx, sellerID, parent.ID, CounterOfferInput{AmountCents: 4_800})
	require.NoError(t, err, "the parent leaves pending before the counter row inserts")

	assert.Equal(t, string(enums.OfferStatusPending), dto.Status)
	assert.Equal(t, int64(4_800), dto.AmountCents)
	require.NotNil(t, dto.ParentOfferID)
	assert.Equal(t, parent.ID, *dto.ParentOfferID)

	stored, err := repo.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusCountered, stored.Status)
	require.NotNil(t, stored.CounteredBy)
	assert.Equal(t, dto.ID, *stored.CounteredBy)
	require.NotNil(t, stored.RespondedAt)
}
