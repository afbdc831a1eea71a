// Package visibility derives which users' content a user may see: their own and that
// of their accepted friends.
package visibility

import (
	"context"

	"github.com/samber/lo"

	"manestream/internal/core"
)

// Scope recomputes the visible id set on every call from the friendship graph.
type Scope struct {
	Friends core.FriendshipGraph
}

// Scope returns userID followed by the ids of userID's accepted friends.
func (s *Scope) Scope(ctx context.Context, userID string) ([]string, error) {
	friendIDs, err := s.Friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return lo.Uniq(append([]string{userID}, friendIDs...)), nil
}

func (s *Scope) Contains(ctx context.Context, userID, otherID string) (bool, error) {
	ids, err := s.Scope(ctx, userID)
	if err != nil {
		return false, err
	}
	return lo.Contains(ids, otherID), nil
}
