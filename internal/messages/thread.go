package messages

import (
	"fmt"

	"github.com/google/uuid"
)

// ThreadKey derives the conversation key from the participant pair and
// the listing the conversation is anchored to. The pair is sorted so
// both sides resolve the same key, and a nil listing uses a fixed
// placeholder so direct threads stay distinct from listing threads.
func ThreadKey(a, b uuid.UUID, listingID *uuid.UUID) string {
	lo, hi := a, b
	if hi.String() < lo.String() {
		lo, hi = hi, lo
	}
	anchor := "direct"
	if listingID != nil {
		anchor = listingID.String()
	}
	return fmt.Sprintf("%s:%s:%s", lo, hi, anchor)
}
