package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered user. Profile fields are carried as-is.
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Username  string `gorm:"uniqueIndex;not null" validate:"required"`
	Email     string `gorm:"not null" validate:"required,email"`
	FirstName string
	LastName  string
	Phone     string `gorm:"index"`
	Picture   string `validate:"omitempty,url"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

// FriendEdge is one direction of a friendship. Edges only ever exist in pairs.
type FriendEdge struct {
	OwnerID         string `gorm:"primaryKey;type:varchar(36)"`
	OtherID         string `gorm:"primaryKey;type:varchar(36)"`
	Accepted        bool   `gorm:"not null;default:false"`
	OriginalRequest bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FriendEdge) TableName() string {
	return "friend_edges"
}

// Place is a venue a challenge points at. ExternalID is the Google place id.
type Place struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	ExternalID string `gorm:"index"`
	Name       string
	Address    string
	Phone      string

	CreatedAt time.Time
	UpdatedAt time.Time

	Detail *PlaceDetail `gorm:"-"`
}

func (Place) TableName() string {
	return "places"
}

func (p *Place) BeforeCreate(_ *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

type Challenge struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Text      string `gorm:"not null"`
	CreatorID string `gorm:"type:varchar(36);not null;index"`
	PlaceID   string `gorm:"type:varchar(36);not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Creator *User  `gorm:"foreignKey:CreatorID"`
	Place   *Place `gorm:"foreignKey:PlaceID"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) BeforeCreate(_ *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// Post is a user's record against a challenge. Exactly one post per challenge is in
// the created state: the creator's own.
type Post struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	ChallengeID  string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_posts_original,where:state = 'created'"`
	UserID       string    `gorm:"type:varchar(36);not null;index"`
	PlaceID      string    `gorm:"type:varchar(36);not null;index"`
	LinkedPostID *string   `gorm:"type:varchar(36)"`
	State        PostState `gorm:"type:varchar(16);not null;index"`
	Rating       int
	Review       string
	Picture      string

	CreatedAt time.Time
	UpdatedAt time.Time

	User       *User      `gorm:"foreignKey:UserID"`
	Place      *Place     `gorm:"foreignKey:PlaceID"`
	Challenge  *Challenge `gorm:"foreignKey:ChallengeID"`
	LinkedPost *Post      `gorm:"foreignKey:LinkedPostID"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// Original reports whether the post is the challenge creator's own record.
func (p Post) Original() bool {
	return p.State == PostStateCreated
}

// Complete reports whether the challenge has been done by the post owner.
func (p Post) Complete() bool {
	return p.State == PostStateCreated || p.State == PostStateCompleted
}

// FeedEntry points a recipient at a piece of content. One row per (owner, content).
type FeedEntry struct {
	OwnerUserID string    `gorm:"primaryKey;type:varchar(36);index:idx_feed_owner_updated,priority:1"`
	ContentID   string    `gorm:"primaryKey;type:varchar(36)"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false;not null;index:idx_feed_owner_updated,priority:2,sort:desc"`
}

func (FeedEntry) TableName() string {
	return "feed_entries"
}

type FeedItem struct {
	Entry FeedEntry
	Post  Post
}

// PlaceDetail is what the place lookup service knows about a venue.
type PlaceDetail struct {
	ExternalID       string  `json:"external_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Phone            string  `json:"phone"`
	Website          string  `json:"website"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// ChallengeInfo is a challenge with its posts split by state.
type ChallengeInfo struct {
	Challenge Challenge

	Created   []Post
	Accepted  []Post
	Completed []Post
}

// PlaceInfo is a place with every post made against it split by state.
type PlaceInfo struct {
	Place Place

	Created   []Post
	Accepted  []Post
	Completed []Post
}

func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// AllModels lists every persisted model, in dependency order.
func AllModels() []any {
	return []any{&User{}, &FriendEdge{}, &Place{}, &Challenge{}, &Post{}, &FeedEntry{}}
}
