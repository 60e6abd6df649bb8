package messages

import (
	"testing"

	"github.com/google/uuid"
)

func TestThreadKeyIsSymmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	listingID := uuid.New()

	if ThreadKey(a, b, &listingID) != ThreadKey(b, a, &listingID) {
		t.Fatalf("expected the same key regardless of participant order")
	}
}

func TestThreadKeySeparatesListings(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	first := uuid.New()
	second := uuid.New()

	if ThreadKey(a, b, &first) == ThreadKey(a, b, &second) {
		t.Fatalf("expected different listings to produce different threads")
	}
	if ThreadKey(a, b, &first) == ThreadKey(a, b, nil) {
		t.Fatalf("expected a direct thread to differ from a listing thread")
	}
}
