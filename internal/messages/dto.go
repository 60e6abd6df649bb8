package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
)

// MessageDTO is the API shape of a single message.
type MessageDTO struct {
	ID          uuid.UUID  `json:"id"`
	ThreadKey   string     `json:"threadKey"`
	ListingID   *uuid.UUID `json:"listingId,omitempty"`
	SenderID    uuid.UUID  `json:"senderId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ThreadDTO summarizes one conversation for the inbox view.
type ThreadDTO struct {
	ThreadKey     string     `json:"threadKey"`
	ListingID     *uuid.UUID `json:"listingId,omitempty"`
	OtherUserID   uuid.UUID  `json:"otherUserId"`
	LastBody      string     `json:"lastBody"`
	LastSenderID  uuid.UUID  `json:"lastSenderId"`
	LastMessageAt time.Time  `json:"lastMessageAt"`
	UnreadCount   int64      `json:"unreadCount"`
}

// SendMessageInput is the payload for sending a message.
type SendMessageInput struct {
	RecipientID uuid.UUID  `json:"recipientId"`
	ListingID   *uuid.UUID `json:"listingId,omitempty"`
	Body        string     `json:"body"`
}

// ThreadPage is one page of a conversation plus the next cursor.
type ThreadPage struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// NewMessageDTO maps the persistence model onto the API shape.
func NewMessageDTO(message *models.Message) MessageDTO {
	return MessageDTO{
		ID:          message.ID,
		ThreadKey:   message.ThreadKey,
		ListingID:   message.ListingID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Body:        message.Body,
		ReadAt:      message.ReadAt,
		CreatedAt:   message.CreatedAt,
	}
}

func newThreadDTO(row threadRow) ThreadDTO {
	return ThreadDTO{
		ThreadKey:     row.ThreadKey,
		ListingID:     row.ListingID,
		OtherUserID:   row.OtherUserID,
		LastBody:      row.LastBody,
		LastSenderID:  row.LastSenderID,
		LastMessageAt: row.LastMessageAt,
		UnreadCount:   row.UnreadCount,
	}
}
