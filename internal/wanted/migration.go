package wanted

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

const legacyKeyConstraint = "uq_wanted_posts_legacy_key"

// The old store wrote wanted posts under three paths. When the same
// document key shows up under more than one, the earliest path in this
// list wins.
var legacyPathPriority = map[string]int{
	"wanted-posts":       0,
	"wantedPosts":        1,
	"users/wanted-posts": 2,
}

// Migrator folds the imported legacy wanted post rows into the
// canonical table exactly once. Re-runs are no-ops: migrated staging
// rows are stamped, and the legacy key unique index swallows any
// stragglers.
type Migrator struct {
	repo     *Repository
	dbClient *dbpkg.Client
	logg     *logger.Logger
}

// NewMigrator builds the one-time wanted post migrator.
func NewMigrator(repo *Repository, dbClient *dbpkg.Client, logg *logger.Logger) (*Migrator, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wanted post repo is required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Migrator{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// Run migrates every unmigrated staging row and returns how many posts
// were created.
func (m *Migrator) Run(ctx context.Context) (int, error) {
	var staged []models.LegacyWantedPost
	err := m.dbClient.DB().WithContext(ctx).
		Where("migrated_at IS NULL").
		Order("document_key ASC, source_created ASC").
		Find(&staged).
		Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load legacy wanted posts")
	}
	if len(staged) == 0 {
		return 0, nil
	}

	winners := pickCanonical(staged)

	migrated := 0
	now := time.Now().UTC()
	for i := range staged {
		row := &staged[i]
		isWinner := winners[row.DocumentKey] == row.ID

		err := m.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			if isWinner {
				post, convErr := legacyToPost(row)
				if convErr != nil {
					return convErr
				}
				if createErr := tx.Create(post).Error; createErr != nil {
					if dbpkg.IsUniqueViolation(createErr, legacyKeyConstraint) {
						// Already migrated by a previous partial run.
						m.logg.Info(m.logg.WithField(ctx, "legacy_key", row.DocumentKey), "legacy wanted post already migrated")
					} else {
						return createErr
					}
				}
			}
			return tx.Model(&models.LegacyWantedPost{}).
				Where("id = ?", row.ID).
				UpdateColumn("migrated_at", now).
				Error
		})
		if err != nil {
			m.logg.Error(m.logg.WithField(ctx, "legacy_key", row.DocumentKey), "migrate legacy wanted post failed", err)
			continue
		}
		if isWinner {
			migrated++
		}
	}

	return migrated, nil
}

// pickCanonical resolves duplicate document keys across the legacy
// paths to a single winning staging row per key.
func pickCanonical(rows []models.LegacyWantedPost) map[string]uuid.UUID {
	winners := make(map[string]uuid.UUID, len(rows))
	best := make(map[string]*models.LegacyWantedPost, len(rows))
	for i := range rows {
		row := &rows[i]
		current, ok := best[row.DocumentKey]
		if !ok || pathRank(row.SourcePath) < pathRank(current.SourcePath) {
			best[row.DocumentKey] = row
		}
	}
	for key, row := range best {
		winners[key] = row.ID
	}
	return winners
}

func pathRank(path string) int {
	if rank, ok := legacyPathPriority[path]; ok {
		return rank
	}
	return len(legacyPathPriority)
}

func legacyToPost(row *models.LegacyWantedPost) (*models.WantedPost, error) {
	game, err := enums.ParseGameCategory(row.Game)
	if err != nil {
		game = enums.GameCategoryOther
	}

	post := &models.WantedPost{
		UserID:        row.UserID,
		Game:          game,
		CardName:      row.CardName,
		SetName:       row.SetName,
		MaxPriceCents: row.MaxPriceCents,
		Notes:         row.Notes,
		Status:        enums.WantedPostActive,
		LegacyKey:     &row.DocumentKey,
	}
	if row.MinCondition != nil {
		if condition, err := enums.ParseCardCondition(*row.MinCondition); err == nil {
			post.MinCondition = &condition
		}
	}
	return post, nil
}
