package core

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type DB interface {
	Model(a any) *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	EstimatedCount(tableName string) (int64, error)
	DB() (*sql.DB, error)
}

type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

type MetricsServer interface{}

type MetricsCollector interface{}

type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	Get(ctx context.Context, id string) (User, error)
	Exists(ctx context.Context, ids ...string) (bool, error)
}

// FriendshipGraph owns friend edges. Every write touches both directions of a pair in
// one transaction.
type FriendshipGraph interface {
	RequestFriend(ctx context.Context, requesterID, targetID string) error
	ConfirmFriend(ctx context.Context, userID, friendID string) error
	DeleteFriend(ctx context.Context, userID, friendID string) error

	Edge(ctx context.Context, ownerID, otherID string) (FriendEdge, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	FriendRequests(ctx context.Context, userID string) ([]string, error)
	FriendsRequested(ctx context.Context, userID string) ([]string, error)
	Friends(ctx context.Context, userID string) ([]User, error)
	PotentialFriends(ctx context.Context, userID string, phones []string) ([]User, error)
}

type VisibilityScope interface {
	Scope(ctx context.Context, userID string) ([]string, error)
	Contains(ctx context.Context, userID, otherID string) (bool, error)
}

// PostFilter narrows post queries. Zero values mean "any".
type PostFilter struct {
	State       PostState
	ChallengeID string
	PlaceID     string
	UserIDs     []string
}

type ContentRepository interface {
	CreateChallenge(ctx context.Context, place PlaceInput, challenge Challenge, post Post) (Post, error)
	CreatePost(ctx context.Context, post Post) (Post, error)
	UpdatePost(ctx context.Context, post Post) (Post, error)
	DeletePost(ctx context.Context, id string) error

	GetChallenge(ctx context.Context, id string) (Challenge, error)
	GetOriginalPost(ctx context.Context, challengeID string) (Post, error)
	GetPlace(ctx context.Context, id string) (Place, error)
	GetPost(ctx context.Context, id string) (Post, error)
	GetPosts(ctx context.Context, ids ...string) (map[string]Post, error)
	FindPosts(ctx context.Context, filter PostFilter) ([]Post, error)
	CountPosts(ctx context.Context, challengeID string) (int64, error)
}

type ContentLifecycle interface {
	CreateChallenge(ctx context.Context, input CreateChallengeInput) (Post, error)
	AcceptChallenge(ctx context.Context, userID, challengeID string) (Post, error)
	CompleteChallenge(ctx context.Context, postID string, input CompleteInput) (Post, error)
	DeletePost(ctx context.Context, postID string) error

	GetPost(ctx context.Context, postID string) (Post, error)
	ListByState(ctx context.Context, state PostState, viewerID *string) ([]Post, error)
	FullChallengeInfo(ctx context.Context, challengeID string, viewerID *string) (ChallengeInfo, error)
	FullPlaceInfo(ctx context.Context, placeID string, viewerID *string) (PlaceInfo, error)
}

type FeedRepository interface {
	Upsert(ctx context.Context, entry FeedEntry) error
	ForOwner(ctx context.Context, ownerUserID string) ([]FeedEntry, error)
	Count(ctx context.Context, contentID string) (int64, error)
}

type FeedIndex interface {
	WriteFeed(ctx context.Context, actorID, contentID string) error
	LoadFeed(ctx context.Context, userID string) ([]FeedItem, error)
}

type PlaceLookup interface {
	LookupPlaceDetail(ctx context.Context, externalID string) (PlaceDetail, error)
	Enrich(ctx context.Context, posts ...*Post)
	EnrichPlace(ctx context.Context, place *Place)
}

type PlaceCache interface {
	Get(ctx context.Context, externalID string) (PlaceDetail, bool, error)
	Put(ctx context.Context, detail PlaceDetail) error
}
