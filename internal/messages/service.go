package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

const (
	maxBodyLength = 5000
	previewLength = 120
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes messaging operations.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*MessageDTO, error)
	ListThreads(ctx context.Context, userID uuid.UUID) ([]ThreadDTO, error)
	ListThread(ctx context.Context, userID uuid.UUID, threadKey string, params pagination.Params) (*ThreadPage, error)
	MarkThreadRead(ctx context.Context, userID uuid.UUID, threadKey string) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ServiceParams wires the messaging service dependencies.
type ServiceParams struct {
	Repo     *Repository
	UserRepo userLoader
	DBClient *dbpkg.Client
	Outbox   *outbox.Service
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	userRepo userLoader
	dbClient *dbpkg.Client
	outbox   *outbox.Service
	logg     *logger.Logger
}

// NewService validates dependencies and returns the messaging service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "messages repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.DBClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		userRepo: params.UserRepo,
		dbClient: params.DBClient,
		outbox:   params.Outbox,
		logg:     params.Logger,
	}, nil
}

// Send delivers a message to another user and queues the recipient
// notification in the same transaction.
func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*MessageDTO, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxBodyLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is too long")
	}
	if input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if input.RecipientID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot message yourself")
	}

	recipient, err := s.userRepo.FindByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipient")
	}
	if !recipient.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "recipient account is not active")
	}

	message := &models.Message{
		ThreadKey:   ThreadKey(senderID, input.RecipientID, input.ListingID),
		ListingID:   input.ListingID,
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Body:        body,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, message); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMessageSent,
			AggregateType: enums.AggregateMessage,
			AggregateID:   message.ID,
			Actor:         &outbox.ActorRef{UserID: senderID, Role: string(enums.RoleUser)},
			Data: payloads.MessageSentEvent{
				MessageID:   message.ID,
				ThreadKey:   message.ThreadKey,
				ListingID:   message.ListingID,
				SenderID:    senderID,
				RecipientID: input.RecipientID,
				Preview:     preview(body),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send message")
	}

	dto := NewMessageDTO(message)
	return &dto, nil
}

// ListThreads returns the user's inbox, most recent conversations first.
func (s *service) ListThreads(ctx context.Context, userID uuid.UUID) ([]ThreadDTO, error) {
	rows, err := s.repo.ListThreads(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list threads")
	}
	threads := make([]ThreadDTO, 0, len(rows))
	for _, row := range rows {
		threads = append(threads, newThreadDTO(row))
	}
	return threads, nil
}

// ListThread returns one page of a conversation the user belongs to.
func (s *service) ListThread(ctx context.Context, userID uuid.UUID, threadKey string, params pagination.Params) (*ThreadPage, error) {
	rows, nextCursor, err := s.repo.ListThread(ctx, userID, threadKey, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list thread messages")
	}

	page := &ThreadPage{Messages: make([]MessageDTO, 0, len(rows)), NextCursor: nextCursor}
	for i := range rows {
		page.Messages = append(page.Messages, NewMessageDTO(&rows[i]))
	}
	return page, nil
}

// MarkThreadRead stamps the user's unread messages in the thread.
func (s *service) MarkThreadRead(ctx context.Context, userID uuid.UUID, threadKey string) (int64, error) {
	updated, err := s.repo.MarkThreadRead(ctx, userID, threadKey, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark thread read")
	}
	return updated, nil
}

// CountUnread returns the user's unread total for the inbox badge.
func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return count, nil
}

func preview(body string) string {
	if len(body) <= previewLength {
		return body
	}
	return body[:previewLength]
}
