package outbox

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
)

// Error messages can carry whole pubsub stack traces; cap what lands
// in the table.
const maxDLQErrorLen = 1024

// DLQRepository persists events the publisher has given up on. Like
// Repository, it only writes inside a caller transaction.
type DLQRepository struct{}

func NewDLQRepository() *DLQRepository {
	return &DLQRepository{}
}

// InsertTx writes a dead-letter row inside the caller's transaction so
// the DLQ entry and the terminal outbox mark commit together.
func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil {
		msg := truncateDLQError(*entry.ErrorMessage)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

func truncateDLQError(message string) string {
	if len(message) <= maxDLQErrorLen {
		return message
	}
	return message[:maxDLQErrorLen]
}
