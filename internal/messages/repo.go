package messages

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// Repository encapsulates message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a messages repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the message row.
func (r *Repository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

type threadRow struct {
	ThreadKey     string     `gorm:"column:thread_key"`
	ListingID     *uuid.UUID `gorm:"column:listing_id"`
	OtherUserID   uuid.UUID  `gorm:"column:other_user_id"`
	LastBody      string     `gorm:"column:last_body"`
	LastSenderID  uuid.UUID  `gorm:"column:last_sender_id"`
	LastMessageAt time.Time  `gorm:"column:last_message_at"`
	UnreadCount   int64      `gorm:"column:unread_count"`
}

// ListThreads returns one row per conversation the user participates
// in, newest activity first, with the unread count for the user's side.
func (r *Repository) ListThreads(ctx context.Context, userID uuid.UUID) ([]threadRow, error) {
	var rows []threadRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT DISTINCT ON (m.thread_key)
				m.thread_key,
				m.listing_id,
				CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END AS other_user_id,
				m.body AS last_body,
				m.sender_id AS last_sender_id,
				m.created_at AS last_message_at,
				(SELECT COUNT(*) FROM messages u
					WHERE u.thread_key = m.thread_key
					  AND u.recipient_id = ?
					  AND u.read_at IS NULL) AS unread_count
			FROM messages m
			WHERE m.sender_id = ? OR m.recipient_id = ?
			ORDER BY m.thread_key, m.created_at DESC
		) t
		ORDER BY t.last_message_at DESC
	`, userID, userID, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListThread returns the messages of one conversation the user
// participates in, oldest first within the page window.
func (r *Repository) ListThread(ctx context.Context, userID uuid.UUID, threadKey string, params pagination.Params) ([]models.Message, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("thread_key = ?", threadKey).
		Where("sender_id = ? OR recipient_id = ?", userID, userID)
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Message
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// MarkThreadRead stamps every unread message addressed to the user in
// the thread and returns how many were updated.
func (r *Repository) MarkThreadRead(ctx context.Context, userID uuid.UUID, threadKey string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("thread_key = ? AND recipient_id = ? AND read_at IS NULL", threadKey, userID).
		UpdateColumn("read_at", now)
	return res.RowsAffected, res.Error
}

// CountUnread returns the user's total unread messages across threads.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).
		Error
	return count, err
}
