package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// ListingSnapshot freezes the listing fields an order was placed against.
// Orders keep rendering correctly after the listing is archived or purged.
type ListingSnapshot struct {
	ListingID  uuid.UUID           `json:"listing_id"`
	SellerID   uuid.UUID           `json:"seller_id"`
	Title      string              `json:"title"`
	Game       enums.GameCategory  `json:"game"`
	SetName    *string             `json:"set_name,omitempty"`
	CardNumber *string             `json:"card_number,omitempty"`
	Condition  enums.CardCondition `json:"condition"`
	PriceCents int64               `json:"price_cents"`
	ImageURL   *string             `json:"image_url,omitempty"`
}

// Value serializes the snapshot to JSON.
func (s *ListingSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the snapshot struct.
func (s *ListingSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = ListingSnapshot{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// JSONMap stores an arbitrary JSON object inside a JSONB column.
type JSONMap map[string]any

// Value serializes the map to JSON.
func (j *JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan decodes JSONB into the map.
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded JSONMap
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
}
