package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/api/middleware"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
)

type testOffersService struct {
	acceptFn func(ctx context.Context, callerID, offerID uuid.UUID) (*offers.OfferDTO, error)
	createFn func(ctx context.Context, buyerID uuid.UUID, input offers.CreateOfferInput) (*offers.OfferDTO, error)
	listFn   func(ctx context.Context, input offers.ListOffersInput) ([]offers.OfferDTO, error)
}

func (s *testOffersService) Create(ctx context.Context, buyerID uuid.UUID, input offers.CreateOfferInput) (*offers.OfferDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, buyerID, input)
	}
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) Get(context.Context, uuid.UUID, uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) List(ctx context.Context, input offers.ListOffersInput) ([]offers.OfferDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx, input)
	}
	return nil, nil
}

func (s *testOffersService) Accept(ctx context.Context, callerID, offerID uuid.UUID) (*offers.OfferDTO, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, callerID, offerID)
	}
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) Decline(context.Context, uuid.UUID, uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) Counter(context.Context, uuid.UUID, uuid.UUID, offers.CounterOfferInput) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) Cancel(context.Context, uuid.UUID, uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{}, nil
}

func (s *testOffersService) ClearExpired(context.Context, uuid.UUID) (*offers.ClearExpiredResult, error) {
	return &offers.ClearExpiredResult{}, nil
}

func (s *testOffersService) ExpireBatch(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func TestOfferAcceptDispatchesWithParsedIDs(t *testing.T) {
	userID := uuid.New()
	offerID := uuid.New()
	called := false
	svc := &testOffersService{
		acceptFn: func(ctx context.Context, caller, oid uuid.UUID) (*offers.OfferDTO, error) {
			called = true
			if caller != userID {
				t.Fatalf("unexpected caller %s", caller)
			}
			if oid != offerID {
				t.Fatalf("unexpected offer %s", oid)
			}
			return &offers.OfferDTO{ID: oid}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+offerID.String()+"/accept", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	req = addRouteParam(req, "offerID", offerID.String())
	resp := httptest.NewRecorder()
	OfferAccept(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected accept called")
	}
}

func TestOfferCreateRejectsMalformedListingID(t *testing.T) {
	svc := &testOffersService{
		createFn: func(context.Context, uuid.UUID, offers.CreateOfferInput) (*offers.OfferDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := strings.NewReader(`{"listingId":"not-a-uuid","amountCents":4500}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	OfferCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOfferListRejectsUnknownRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers?role=auditor", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	OfferList(&testOffersService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOfferListPassesRoleFilter(t *testing.T) {
	userID := uuid.New()
	svc := &testOffersService{
		listFn: func(ctx context.Context, input offers.ListOffersInput) ([]offers.OfferDTO, error) {
			if input.UserID != userID {
				t.Fatalf("unexpected user %s", input.UserID)
			}
			if input.Role != "seller" {
				t.Fatalf("expected seller role got %q", input.Role)
			}
			if !input.IncludeCleared {
				t.Fatal("expected includeCleared")
			}
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers?role=seller&includeCleared=true", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	OfferList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
