package wanted

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// WantedPostDTO is the wanted post payload returned to clients.
type WantedPostDTO struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Game          string    `json:"game"`
	CardName      string    `json:"card_name"`
	SetName       *string   `json:"set_name,omitempty"`
	MinCondition  *string   `json:"min_condition,omitempty"`
	MaxPriceCents *int64    `json:"max_price_cents,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateWantedPostInput holds the validated payload to create a post.
type CreateWantedPostInput struct {
	Game          enums.GameCategory
	CardName      string
	SetName       *string
	MinCondition  *enums.CardCondition
	MaxPriceCents *int64
	Notes         *string
}

// UpdateWantedPostInput holds optional mutation values for a post.
type UpdateWantedPostInput struct {
	CardName      *string
	SetName       *string
	MinCondition  *enums.CardCondition
	MaxPriceCents *int64
	Notes         *string
	Status        *enums.WantedPostStatus
}

// ListPublicInput drives the public board query.
type ListPublicInput struct {
	Pagination pagination.Params
	Game       *enums.GameCategory
}

// ListResult is one page of posts plus the cursor for the next page.
type ListResult struct {
	Posts      []WantedPostDTO `json:"posts"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewWantedPostDTO builds a DTO from the persisted model.
func NewWantedPostDTO(post *models.WantedPost) *WantedPostDTO {
	dto := &WantedPostDTO{
		ID:            post.ID,
		UserID:        post.UserID,
		Game:          string(post.Game),
		CardName:      post.CardName,
		SetName:       post.SetName,
		MaxPriceCents: post.MaxPriceCents,
		Notes:         post.Notes,
		Status:        string(post.Status),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
	if post.MinCondition != nil {
		condition := string(*post.MinCondition)
		dto.MinCondition = &condition
	}
	return dto
}
