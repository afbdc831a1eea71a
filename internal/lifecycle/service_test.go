package lifecycle_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"manestream/internal/config"
	"manestream/internal/core"
	"manestream/internal/feed"
	"manestream/internal/lifecycle"
	"manestream/internal/persistence/content"
	feedstore "manestream/internal/persistence/feed"
	"manestream/internal/persistence/friends"
	"manestream/internal/persistence/persistencetest"
	"manestream/internal/persistence/users"
	"manestream/internal/visibility"
)

type env struct {
	service *lifecycle.Service
	index   *feed.Index
	users   *users.Repository
	friends *friends.Repository
	content *content.Repository
	store   *feedstore.Repository

	now time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := persistencetest.NewDB(t)
	logger := slog.New(slog.DiscardHandler)

	e := &env{
		users:   &users.Repository{DB: db},
		friends: &friends.Repository{DB: db},
		content: &content.Repository{DB: db},
		store:   &feedstore.Repository{DB: db},
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	scope := &visibility.Scope{Friends: e.friends}

	e.index = &feed.Index{
		Logger:  logger,
		Config:  &config.Config{FanoutConcurrency: 2},
		Scope:   scope,
		Store:   e.store,
		Content: e.content,
		Now: func() time.Time {
			return e.now
		},
	}

	e.service = &lifecycle.Service{
		Logger:  logger,
		Users:   e.users,
		Content: e.content,
		Scope:   scope,
		Feed:    e.index,
	}

	return e
}

func (e *env) tick() {
	e.now = e.now.Add(time.Minute)
}

func (e *env) user(t *testing.T, username string) core.User {
	t.Helper()

	user, err := e.users.Create(t.Context(), core.User{Username: username, Email: username + "@manestream.test"})
	require.NoError(t, err)
	return user
}

func (e *env) befriend(t *testing.T, a, b core.User) {
	t.Helper()

	require.NoError(t, e.friends.RequestFriend(t.Context(), a.ID, b.ID))
	require.NoError(t, e.friends.ConfirmFriend(t.Context(), b.ID, a.ID))
}

func (e *env) challenge(t *testing.T, creator core.User) core.Post {
	t.Helper()

	post, err := e.service.CreateChallenge(t.Context(), core.CreateChallengeInput{
		CreatorID: creator.ID,
		Place:     core.PlaceInput{Name: "Pizza Place", Address: "1 Slice St"},
		Text:      "try the slice",
		Review:    "best slice in town",
		Rating:    95,
	})
	require.NoError(t, err)
	return post
}

func (e *env) feedIDs(t *testing.T, user core.User) []string {
	t.Helper()

	items, err := e.index.LoadFeed(t.Context(), user.ID)
	require.NoError(t, err)
	return lo.Map(items, func(item core.FeedItem, _ int) string {
		return item.Post.ID
	})
}

func TestService_Scenario(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	mano := e.user(t, "mano")
	booma := e.user(t, "booma")
	e.befriend(t, mano, booma)

	original := e.challenge(t, mano)
	require.Equal(t, core.PostStateCreated, original.State)
	require.Equal(t, mano.ID, original.UserID)
	require.Equal(t, "Pizza Place", original.Place.Name)
	require.Equal(t, "try the slice", original.Challenge.Text)

	require.Equal(t, []string{original.ID}, e.feedIDs(t, mano))
	require.Equal(t, []string{original.ID}, e.feedIDs(t, booma))

	e.tick()
	accepted, err := e.service.AcceptChallenge(t.Context(), booma.ID, original.ChallengeID)
	require.NoError(t, err)
	require.Equal(t, core.PostStateAccepted, accepted.State)
	require.Equal(t, booma.ID, accepted.UserID)
	require.Equal(t, original.ID, *accepted.LinkedPostID)
	require.Equal(t, original.PlaceID, accepted.PlaceID)

	require.Equal(t, []string{accepted.ID, original.ID}, e.feedIDs(t, mano))
	require.Equal(t, []string{accepted.ID, original.ID}, e.feedIDs(t, booma))

	e.tick()
	completed, err := e.service.CompleteChallenge(t.Context(), accepted.ID, core.CompleteInput{
		Review: "crispy",
		Rating: 90,
	})
	require.NoError(t, err)
	require.Equal(t, accepted.ID, completed.ID)
	require.Equal(t, core.PostStateCompleted, completed.State)
	require.Equal(t, 90, completed.Rating)

	count, err := e.content.CountPosts(t.Context(), original.ChallengeID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	items, err := e.index.LoadFeed(t.Context(), mano.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, accepted.ID, items[0].Post.ID)
	require.Equal(t, core.PostStateCompleted, items[0].Post.State)
	require.Equal(t, "crispy", items[0].Post.Review)
	require.Equal(t, original.ID, items[0].Post.LinkedPost.ID)

	feedRows, err := e.store.Count(t.Context(), accepted.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, feedRows)
}

func TestService_CreateChallenge(t *testing.T) {
	t.Parallel()

	t.Run("validates before writing", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		mano := e.user(t, "mano")

		cases := map[string]core.CreateChallengeInput{
			"missing text":  {CreatorID: mano.ID, Place: core.PlaceInput{Name: "Pizza Place"}},
			"missing place": {CreatorID: mano.ID, Text: "try the slice"},
			"bad rating":    {CreatorID: mano.ID, Place: core.PlaceInput{Name: "Pizza Place"}, Text: "x", Rating: 101},
			"bad picture":   {CreatorID: mano.ID, Place: core.PlaceInput{Name: "Pizza Place"}, Text: "x", Picture: "nope"},
		}

		for name, input := range cases {
			_, err := e.service.CreateChallenge(t.Context(), input)
			require.ErrorIs(t, err, core.ErrValidation, name)
		}

		posts, err := e.service.ListByState(t.Context(), core.PostStateCreated, nil)
		require.NoError(t, err)
		require.Empty(t, posts)
	})

	t.Run("unknown creator", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		_, err := e.service.CreateChallenge(t.Context(), core.CreateChallengeInput{
			CreatorID: "ghost",
			Place:     core.PlaceInput{Name: "Pizza Place"},
			Text:      "try the slice",
		})
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("fan-out failure does not fail the write", func(t *testing.T) {
		t.Parallel()

		e := newEnv(t)
		mano := e.user(t, "mano")
		e.service.Feed = brokenFeed{}

		post := e.challenge(t, mano)
		require.NotEmpty(t, post.ID)

		stored, err := e.service.GetPost(t.Context(), post.ID)
		require.NoError(t, err)
		require.Equal(t, core.PostStateCreated, stored.State)
	})
}

func TestService_AcceptChallenge(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	mano := e.user(t, "mano")
	booma := e.user(t, "booma")
	original := e.challenge(t, mano)

	t.Run("unknown challenge", func(t *testing.T) {
		_, err := e.service.AcceptChallenge(t.Context(), booma.ID, "missing")
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := e.service.AcceptChallenge(t.Context(), "ghost", original.ChallengeID)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestService_CompleteChallenge(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	mano := e.user(t, "mano")
	booma := e.user(t, "booma")
	e.befriend(t, mano, booma)

	original := e.challenge(t, mano)
	accepted, err := e.service.AcceptChallenge(t.Context(), booma.ID, original.ChallengeID)
	require.NoError(t, err)

	t.Run("invalid input leaves the post untouched", func(t *testing.T) {
		_, err := e.service.CompleteChallenge(t.Context(), accepted.ID, core.CompleteInput{Rating: -1})
		require.ErrorIs(t, err, core.ErrValidation)

		post, err := e.service.GetPost(t.Context(), accepted.ID)
		require.NoError(t, err)
		require.Equal(t, core.PostStateAccepted, post.State)
	})

	t.Run("original post cannot be completed", func(t *testing.T) {
		_, err := e.service.CompleteChallenge(t.Context(), original.ID, core.CompleteInput{Rating: 50})
		require.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := e.service.CompleteChallenge(t.Context(), "missing", core.CompleteInput{Rating: 50})
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("completing twice updates the review", func(t *testing.T) {
		_, err := e.service.CompleteChallenge(t.Context(), accepted.ID, core.CompleteInput{Review: "good", Rating: 70})
		require.NoError(t, err)

		post, err := e.service.CompleteChallenge(t.Context(), accepted.ID, core.CompleteInput{Review: "great", Rating: 85})
		require.NoError(t, err)
		require.Equal(t, accepted.ID, post.ID)
		require.Equal(t, "great", post.Review)
		require.Equal(t, 85, post.Rating)

		count, err := e.content.CountPosts(t.Context(), original.ChallengeID)
		require.NoError(t, err)
		require.EqualValues(t, 2, count)
	})
}

func TestService_DeletePost(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	mano := e.user(t, "mano")
	booma := e.user(t, "booma")
	e.befriend(t, mano, booma)

	original := e.challenge(t, mano)

	e.tick()
	accepted, err := e.service.AcceptChallenge(t.Context(), booma.ID, original.ChallengeID)
	require.NoError(t, err)

	require.ErrorIs(t, e.service.DeletePost(t.Context(), original.ID), core.ErrValidation)
	require.NoError(t, e.service.DeletePost(t.Context(), accepted.ID))
	require.ErrorIs(t, e.service.DeletePost(t.Context(), accepted.ID), core.ErrNotFound)

	require.Equal(t, []string{original.ID}, e.feedIDs(t, mano))
}

func TestService_Queries(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	mano := e.user(t, "mano")
	booma := e.user(t, "booma")
	chet := e.user(t, "chet")
	e.befriend(t, mano, booma)

	original := e.challenge(t, mano)

	boomaPost, err := e.service.AcceptChallenge(t.Context(), booma.ID, original.ChallengeID)
	require.NoError(t, err)
	chetPost, err := e.service.AcceptChallenge(t.Context(), chet.ID, original.ChallengeID)
	require.NoError(t, err)

	_, err = e.service.CompleteChallenge(t.Context(), chetPost.ID, core.CompleteInput{Rating: 60})
	require.NoError(t, err)

	postIDs := func(posts []core.Post) []string {
		return lo.Map(posts, func(p core.Post, _ int) string { return p.ID })
	}

	t.Run("list by state without a viewer", func(t *testing.T) {
		posts, err := e.service.ListByState(t.Context(), core.PostStateAccepted, nil)
		require.NoError(t, err)
		require.Equal(t, []string{boomaPost.ID}, postIDs(posts))

		posts, err = e.service.ListByState(t.Context(), core.PostStateCompleted, nil)
		require.NoError(t, err)
		require.Equal(t, []string{chetPost.ID}, postIDs(posts))
	})

	t.Run("list by state scoped to a viewer", func(t *testing.T) {
		posts, err := e.service.ListByState(t.Context(), core.PostStateCompleted, &mano.ID)
		require.NoError(t, err)
		require.Empty(t, posts)

		posts, err = e.service.ListByState(t.Context(), core.PostStateCompleted, &chet.ID)
		require.NoError(t, err)
		require.Equal(t, []string{chetPost.ID}, postIDs(posts))
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := e.service.ListByState(t.Context(), core.PostState("archived"), nil)
		require.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("full challenge info", func(t *testing.T) {
		info, err := e.service.FullChallengeInfo(t.Context(), original.ChallengeID, nil)
		require.NoError(t, err)
		require.Equal(t, "try the slice", info.Challenge.Text)
		require.Equal(t, []string{original.ID}, postIDs(info.Created))
		require.Equal(t, []string{boomaPost.ID}, postIDs(info.Accepted))
		require.Equal(t, []string{chetPost.ID}, postIDs(info.Completed))

		info, err = e.service.FullChallengeInfo(t.Context(), original.ChallengeID, &booma.ID)
		require.NoError(t, err)
		require.Equal(t, []string{original.ID}, postIDs(info.Created))
		require.Equal(t, []string{boomaPost.ID}, postIDs(info.Accepted))
		require.Empty(t, info.Completed)

		_, err = e.service.FullChallengeInfo(t.Context(), "missing", nil)
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("full place info", func(t *testing.T) {
		info, err := e.service.FullPlaceInfo(t.Context(), original.PlaceID, &chet.ID)
		require.NoError(t, err)
		require.Equal(t, "Pizza Place", info.Place.Name)
		require.Empty(t, info.Created)
		require.Empty(t, info.Accepted)
		require.Equal(t, []string{chetPost.ID}, postIDs(info.Completed))

		_, err = e.service.FullPlaceInfo(t.Context(), "missing", nil)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

type brokenFeed struct{}

func (brokenFeed) WriteFeed(context.Context, string, string) error {
	return errors.New("feed store down")
}

func (brokenFeed) LoadFeed(context.Context, string) ([]core.FeedItem, error) {
	return nil, errors.New("feed store down")
}
