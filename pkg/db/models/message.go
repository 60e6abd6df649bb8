package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users, optionally anchored to a
// listing. ThreadKey is derived from the sorted participant pair plus the
// listing so both sides resolve the same conversation.
type Message struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ThreadKey   string     `gorm:"column:thread_key;type:text;not null;index:messages_thread_key_idx"`
	ListingID   *uuid.UUID `gorm:"column:listing_id;type:uuid"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index:messages_recipient_id_idx"`
	Body        string     `gorm:"column:body;type:text;not null"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
