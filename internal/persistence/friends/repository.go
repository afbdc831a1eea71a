package friends

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"manestream/internal/core"
	"manestream/internal/persistence"
)

// Repository stores friendships as pairs of directional edges. All writes touch both
// edges of a pair inside one transaction.
type Repository struct {
	DB core.DB
}

func (r *Repository) RequestFriend(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return fmt.Errorf("%w: cannot befriend yourself", core.ErrValidation)
	}

	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		var users int64
		err := tx.Model(&core.User{}).Where("id IN ?", []string{requesterID, targetID}).Count(&users).Error
		if err != nil {
			return err
		}
		if users != 2 {
			return fmt.Errorf("%w: user %s or %s", core.ErrNotFound, requesterID, targetID)
		}

		var existing int64
		err = pair(tx.Model(&core.FriendEdge{}), requesterID, targetID).Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: friendship between %s and %s already exists", core.ErrConflict, requesterID, targetID)
		}

		edges := []core.FriendEdge{
			{OwnerID: requesterID, OtherID: targetID, OriginalRequest: true},
			{OwnerID: targetID, OtherID: requesterID},
		}
		return persistence.Classify(tx.Create(&edges).Error)
	})
}

func (r *Repository) ConfirmFriend(ctx context.Context, userID, friendID string) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		res := pair(tx.Model(&core.FriendEdge{}), userID, friendID).Update("accepted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 2 {
			return fmt.Errorf("%w: friend request between %s and %s", core.ErrNotFound, userID, friendID)
		}
		return nil
	})
}

// DeleteFriend removes a friendship or a pending request. Missing edges are fine.
func (r *Repository) DeleteFriend(ctx context.Context, userID, friendID string) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		return pair(tx, userID, friendID).Delete(&core.FriendEdge{}).Error
	})
}

func (r *Repository) Edge(ctx context.Context, ownerID, otherID string) (core.FriendEdge, error) {
	var edge core.FriendEdge
	err := r.DB.Model(&core.FriendEdge{}).
		WithContext(ctx).
		Where("owner_id = ? AND other_id = ?", ownerID, otherID).
		First(&edge).Error
	if err != nil {
		return core.FriendEdge{}, fmt.Errorf("edge %s -> %s: %w", ownerID, otherID, persistence.Classify(err))
	}
	return edge, nil
}

func (r *Repository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return r.otherIDs(ctx, "owner_id = ? AND accepted = ?", userID, true)
}

// FriendRequests returns the ids of users who asked userID to be friends.
func (r *Repository) FriendRequests(ctx context.Context, userID string) ([]string, error) {
	return r.otherIDs(ctx, "owner_id = ? AND accepted = ? AND original_request = ?", userID, false, false)
}

// FriendsRequested returns the ids of users userID asked to be friends.
func (r *Repository) FriendsRequested(ctx context.Context, userID string) ([]string, error) {
	return r.otherIDs(ctx, "owner_id = ? AND accepted = ? AND original_request = ?", userID, false, true)
}

func (r *Repository) Friends(ctx context.Context, userID string) ([]core.User, error) {
	var friends []core.User
	err := r.DB.Model(&core.User{}).
		WithContext(ctx).
		Joins("JOIN friend_edges ON friend_edges.other_id = users.id").
		Where("friend_edges.owner_id = ? AND friend_edges.accepted = ?", userID, true).
		Order("users.username").
		Find(&friends).Error
	return friends, err
}

// PotentialFriends finds users with one of the given phone numbers that have no edge
// with userID yet.
func (r *Repository) PotentialFriends(ctx context.Context, userID string, phones []string) ([]core.User, error) {
	phones = lo.Uniq(lo.Compact(phones))
	if len(phones) == 0 {
		return []core.User{}, nil
	}

	connected := r.DB.Model(&core.FriendEdge{}).Select("other_id").Where("owner_id = ?", userID)

	var users []core.User
	err := r.DB.Model(&core.User{}).
		WithContext(ctx).
		Where("phone IN ?", phones).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", connected).
		Order("username").
		Find(&users).Error
	return users, err
}

func (r *Repository) otherIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	var ids []string
	err := r.DB.Model(&core.FriendEdge{}).
		WithContext(ctx).
		Where(query, args...).
		Order("created_at").
		Pluck("other_id", &ids).Error
	return ids, err
}

func pair(tx *gorm.DB, a, b string) *gorm.DB {
	return tx.Where("(owner_id = ? AND other_id = ?) OR (owner_id = ? AND other_id = ?)", a, b, b, a)
}
