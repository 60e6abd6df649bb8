package wanted

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
)

// Service exposes wanted post management. Posts live in one canonical
// table; the legacy document paths only exist in the staging table the
// migration job drains.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateWantedPostInput) (*WantedPostDTO, error)
	Update(ctx context.Context, userID, postID uuid.UUID, input UpdateWantedPostInput) (*WantedPostDTO, error)
	Delete(ctx context.Context, userID, postID uuid.UUID) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]WantedPostDTO, error)
	ListPublic(ctx context.Context, input ListPublicInput) (*ListResult, error)
}

type service struct {
	repo *Repository
}

// NewService builds a wanted post service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wanted post repo is required")
	}
	return &service{repo: repo}, nil
}

// Create inserts the post as active.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateWantedPostInput) (*WantedPostDTO, error) {
	cardName := strings.TrimSpace(input.CardName)
	if cardName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card name is required")
	}
	if !input.Game.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown game category")
	}
	if input.MaxPriceCents != nil && *input.MaxPriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max price must be positive")
	}

	post := &models.WantedPost{
		UserID:        userID,
		Game:          input.Game,
		CardName:      cardName,
		SetName:       input.SetName,
		MinCondition:  input.MinCondition,
		MaxPriceCents: input.MaxPriceCents,
		Notes:         input.Notes,
		Status:        enums.WantedPostActive,
	}
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert wanted post")
	}
	return NewWantedPostDTO(created), nil
}

// Update mutates the owner's post.
func (s *service) Update(ctx context.Context, userID, postID uuid.UUID, input UpdateWantedPostInput) (*WantedPostDTO, error) {
	post, err := s.loadOwned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if input.CardName != nil {
		cardName := strings.TrimSpace(*input.CardName)
		if cardName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "card name is required")
		}
		post.CardName = cardName
	}
	if input.SetName != nil {
		post.SetName = input.SetName
	}
	if input.MinCondition != nil {
		if !input.MinCondition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown card condition")
		}
		post.MinCondition = input.MinCondition
	}
	if input.MaxPriceCents != nil {
		if *input.MaxPriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max price must be positive")
		}
		post.MaxPriceCents = input.MaxPriceCents
	}
	if input.Notes != nil {
		post.Notes = input.Notes
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown wanted post status")
		}
		post.Status = *input.Status
	}

	updated, err := s.repo.Save(ctx, post)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update wanted post")
	}
	return NewWantedPostDTO(updated), nil
}

// Delete removes the owner's post.
func (s *service) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete wanted post")
	}
	return nil
}

// ListMine returns the owner's posts in every status.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]WantedPostDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wanted posts")
	}
	dtos := make([]WantedPostDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewWantedPostDTO(&rows[i]))
	}
	return dtos, nil
}

// ListPublic pages through active posts.
func (s *service) ListPublic(ctx context.Context, input ListPublicInput) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListPublic(ctx, input.Pagination, input.Game)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wanted posts")
	}
	dtos := make([]WantedPostDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewWantedPostDTO(&rows[i]))
	}
	return &ListResult{Posts: dtos, NextCursor: nextCursor}, nil
}

func (s *service) loadOwned(ctx context.Context, userID, postID uuid.UUID) (*models.WantedPost, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wanted post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wanted post")
	}
	if post.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wanted post does not belong to caller")
	}
	return post, nil
}
