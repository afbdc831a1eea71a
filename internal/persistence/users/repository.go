package users

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"manestream/internal/core"
	"manestream/internal/persistence"
)

type Repository struct {
	DB core.DB
}

func (r *Repository) Create(ctx context.Context, user core.User) (core.User, error) {
	if err := core.Validate(ctx, user); err != nil {
		return core.User{}, err
	}

	err := r.DB.Model(&core.User{}).WithContext(ctx).Create(&user).Error
	if err != nil {
		return core.User{}, persistence.Classify(err)
	}
	return user, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.User, error) {
	var user core.User
	err := r.DB.Model(&core.User{}).WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return core.User{}, fmt.Errorf("user %s: %w", id, persistence.Classify(err))
	}
	return user, nil
}

// Exists reports whether every given id belongs to a user.
func (r *Repository) Exists(ctx context.Context, ids ...string) (bool, error) {
	ids = lo.Uniq(ids)

	var count int64
	err := r.DB.Model(&core.User{}).WithContext(ctx).Where("id IN ?", ids).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == int64(len(ids)), nil
}
