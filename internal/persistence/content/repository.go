package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"manestream/internal/core"
	"manestream/internal/persistence"
)

// Repository stores places, challenges and posts.
type Repository struct {
	DB core.DB
}

// CreateChallenge finds or creates the place, then creates the challenge and its
// original post, all in one transaction.
func (r *Repository) CreateChallenge(ctx context.Context, placeInput core.PlaceInput, challenge core.Challenge,
	post core.Post) (core.Post, error) {
	err := r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		place, err := findOrCreatePlace(tx, placeInput)
		if err != nil {
			return fmt.Errorf("place: %w", err)
		}

		challenge.PlaceID = place.ID
		if err := tx.Create(&challenge).Error; err != nil {
			return fmt.Errorf("challenge: %w", persistence.Classify(err))
		}

		post.ChallengeID = challenge.ID
		post.UserID = challenge.CreatorID
		post.PlaceID = place.ID
		post.State = core.PostStateCreated
		post.LinkedPostID = nil
		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("post: %w", persistence.Classify(err))
		}

		post.Place = &place
		post.Challenge = &challenge
		return nil
	})
	if err != nil {
		return core.Post{}, err
	}
	return post, nil
}

func (r *Repository) CreatePost(ctx context.Context, post core.Post) (core.Post, error) {
	err := r.DB.Model(&core.Post{}).WithContext(ctx).Create(&post).Error
	if err != nil {
		return core.Post{}, persistence.Classify(err)
	}
	return post, nil
}

// UpdatePost writes the mutable fields of an existing post.
func (r *Repository) UpdatePost(ctx context.Context, post core.Post) (core.Post, error) {
	res := r.DB.Model(&core.Post{}).
		WithContext(ctx).
		Where("id = ?", post.ID).
		Select("state", "rating", "review", "picture", "updated_at").
		Updates(&core.Post{
			State:     post.State,
			Rating:    post.Rating,
			Review:    post.Review,
			Picture:   post.Picture,
			UpdatedAt: time.Now(),
		})
	if res.Error != nil {
		return core.Post{}, persistence.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return core.Post{}, fmt.Errorf("%w: post %s", core.ErrNotFound, post.ID)
	}
	return r.GetPost(ctx, post.ID)
}

func (r *Repository) DeletePost(ctx context.Context, id string) error {
	res := r.DB.Model(&core.Post{}).WithContext(ctx).Where("id = ?", id).Delete(&core.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %s", core.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) GetChallenge(ctx context.Context, id string) (core.Challenge, error) {
	var challenge core.Challenge
	err := r.DB.Model(&core.Challenge{}).
		WithContext(ctx).
		Preload("Creator").
		Preload("Place").
		Where("id = ?", id).
		First(&challenge).Error
	if err != nil {
		return core.Challenge{}, fmt.Errorf("challenge %s: %w", id, persistence.Classify(err))
	}
	return challenge, nil
}

func (r *Repository) GetOriginalPost(ctx context.Context, challengeID string) (core.Post, error) {
	var post core.Post
	err := r.DB.Model(&core.Post{}).
		WithContext(ctx).
		Where("challenge_id = ? AND state = ?", challengeID, core.PostStateCreated).
		First(&post).Error
	if err != nil {
		return core.Post{}, fmt.Errorf("original post of challenge %s: %w", challengeID, persistence.Classify(err))
	}
	return post, nil
}

func (r *Repository) GetPlace(ctx context.Context, id string) (core.Place, error) {
	var place core.Place
	err := r.DB.Model(&core.Place{}).WithContext(ctx).Where("id = ?", id).First(&place).Error
	if err != nil {
		return core.Place{}, fmt.Errorf("place %s: %w", id, persistence.Classify(err))
	}
	return place, nil
}

func (r *Repository) GetPost(ctx context.Context, id string) (core.Post, error) {
	var post core.Post
	err := r.posts(ctx).Where("posts.id = ?", id).First(&post).Error
	if err != nil {
		return core.Post{}, fmt.Errorf("post %s: %w", id, persistence.Classify(err))
	}
	return post, nil
}

// GetPosts loads the posts with the given ids. Missing ids are absent from the result.
func (r *Repository) GetPosts(ctx context.Context, ids ...string) (map[string]core.Post, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[string]core.Post{}, nil
	}

	var posts []core.Post
	err := r.posts(ctx).Where("posts.id IN ?", ids).Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return lo.KeyBy(posts, func(post core.Post) string {
		return post.ID
	}), nil
}

func (r *Repository) FindPosts(ctx context.Context, filter core.PostFilter) ([]core.Post, error) {
	query := r.posts(ctx)

	if filter.State != "" {
		query = query.Where("posts.state = ?", filter.State)
	}
	if filter.ChallengeID != "" {
		query = query.Where("posts.challenge_id = ?", filter.ChallengeID)
	}
	if filter.PlaceID != "" {
		query = query.Where("posts.place_id = ?", filter.PlaceID)
	}
	if filter.UserIDs != nil {
		if len(filter.UserIDs) == 0 {
			return []core.Post{}, nil
		}
		query = query.Where("posts.user_id IN ?", filter.UserIDs)
	}

	var posts []core.Post
	err := query.Order("posts.created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *Repository) CountPosts(ctx context.Context, challengeID string) (int64, error) {
	var count int64
	err := r.DB.Model(&core.Post{}).WithContext(ctx).Where("challenge_id = ?", challengeID).Count(&count).Error
	return count, err
}

func (r *Repository) posts(ctx context.Context) *gorm.DB {
	return r.DB.Model(&core.Post{}).
		WithContext(ctx).
		Preload("User").
		Preload("Place").
		Preload("Challenge").
		Preload("Challenge.Creator").
		Preload("LinkedPost").
		Preload("LinkedPost.User")
}

func findOrCreatePlace(tx *gorm.DB, input core.PlaceInput) (core.Place, error) {
	query := tx.Model(&core.Place{})
	if input.ExternalID != "" {
		query = query.Where("external_id = ?", input.ExternalID)
	} else {
		query = query.Where("external_id = '' AND name = ? AND address = ?", input.Name, input.Address)
	}

	var place core.Place
	err := query.First(&place).Error
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Place{}, err
	}

	place = core.Place{
		ExternalID: input.ExternalID,
		Name:       input.Name,
		Address:    input.Address,
		Phone:      input.Phone,
	}
	if err := tx.Create(&place).Error; err != nil {
		return core.Place{}, persistence.Classify(err)
	}
	return place, nil
}
