package feed

import (
	"context"

	"gorm.io/gorm/clause"

	"manestream/internal/core"
)

// Repository stores feed entries. Rows are keyed by (owner_user_id, content_id).
type Repository struct {
	DB core.DB
}

// Upsert inserts the entry or, if the owner already has it, refreshes updated_at.
func (r *Repository) Upsert(ctx context.Context, entry core.FeedEntry) error {
	return r.DB.Model(&core.FeedEntry{}).
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).
		Create(&entry).Error
}

// ForOwner returns the owner's entries, most recently updated first.
func (r *Repository) ForOwner(ctx context.Context, ownerUserID string) ([]core.FeedEntry, error) {
	var entries []core.FeedEntry
	err := r.DB.Model(&core.FeedEntry{}).
		WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("updated_at DESC").
		Order("content_id").
		Find(&entries).Error
	return entries, err
}

// Count returns how many owners have contentID in their feed.
func (r *Repository) Count(ctx context.Context, contentID string) (int64, error) {
	var count int64
	err := r.DB.Model(&core.FeedEntry{}).WithContext(ctx).Where("content_id = ?", contentID).Count(&count).Error
	return count, err
}
