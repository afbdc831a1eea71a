// Package lifecycle drives challenges and posts through their states.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"manestream/internal/core"
)

var (
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "manestream_lifecycle_transitions_total",
		Help: "Post state transitions, by transition.",
	}, []string{"transition"})

	fanoutErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manestream_lifecycle_fanout_errors_total",
		Help: "Feed fan-outs that failed after a committed transition.",
	})
)

type Service struct {
	Logger *slog.Logger

	Users   core.UserRepository
	Content core.ContentRepository
	Scope   core.VisibilityScope
	Places  core.PlaceLookup
	Feed    core.FeedIndex
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "lifecycle.Service")
	return nil
}

func (s *Service) CreateChallenge(ctx context.Context, input core.CreateChallengeInput) (core.Post, error) {
	if err := core.Validate(ctx, input); err != nil {
		return core.Post{}, err
	}

	if err := s.requireUsers(ctx, input.CreatorID); err != nil {
		return core.Post{}, err
	}

	post, err := s.Content.CreateChallenge(ctx, input.Place,
		core.Challenge{Text: input.Text, CreatorID: input.CreatorID},
		core.Post{Review: input.Review, Rating: input.Rating, Picture: input.Picture},
	)
	if err != nil {
		return core.Post{}, err
	}

	transitions.WithLabelValues("create").Inc()
	s.Logger.Info("Challenge created", "challenge", post.ChallengeID, "post", post.ID, "creator", post.UserID)

	s.fanout(ctx, post.UserID, post.ID)

	return post, nil
}

func (s *Service) AcceptChallenge(ctx context.Context, userID, challengeID string) (core.Post, error) {
	challenge, err := s.Content.GetChallenge(ctx, challengeID)
	if err != nil {
		return core.Post{}, err
	}

	if err := s.requireUsers(ctx, userID); err != nil {
		return core.Post{}, err
	}

	original, err := s.Content.GetOriginalPost(ctx, challenge.ID)
	if err != nil {
		return core.Post{}, err
	}

	post, err := s.Content.CreatePost(ctx, core.Post{
		ChallengeID:  challenge.ID,
		UserID:       userID,
		PlaceID:      challenge.PlaceID,
		LinkedPostID: &original.ID,
		State:        core.PostStateAccepted,
	})
	if err != nil {
		return core.Post{}, err
	}

	transitions.WithLabelValues("accept").Inc()
	s.Logger.Info("Challenge accepted", "challenge", challenge.ID, "post", post.ID, "user", userID)

	s.fanout(ctx, userID, post.ID)

	return post, nil
}

// CompleteChallenge marks an accepted post done, or refreshes the review of one that
// already is. The post is updated in place.
func (s *Service) CompleteChallenge(ctx context.Context, postID string, input core.CompleteInput) (core.Post, error) {
	if err := core.Validate(ctx, input); err != nil {
		return core.Post{}, err
	}

	post, err := s.Content.GetPost(ctx, postID)
	if err != nil {
		return core.Post{}, err
	}

	if !post.State.CanTransitionTo(core.PostStateCompleted) {
		return core.Post{}, fmt.Errorf("%w: post %s is %s and cannot be completed", core.ErrValidation, post.ID, post.State)
	}

	from := post.State

	post.State = core.PostStateCompleted
	post.Review = input.Review
	post.Rating = input.Rating
	post.Picture = input.Picture

	post, err = s.Content.UpdatePost(ctx, post)
	if err != nil {
		return core.Post{}, err
	}

	transitions.WithLabelValues(string(from) + "_to_completed").Inc()
	s.Logger.Info("Challenge completed", "challenge", post.ChallengeID, "post", post.ID, "user", post.UserID)

	s.fanout(ctx, post.UserID, post.ID)

	return post, nil
}

// DeletePost removes an accepted or completed post. Feed entries pointing at it are
// left behind and skipped on load.
func (s *Service) DeletePost(ctx context.Context, postID string) error {
	post, err := s.Content.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.Original() {
		return fmt.Errorf("%w: post %s is the original of challenge %s", core.ErrValidation, post.ID, post.ChallengeID)
	}

	if err := s.Content.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	transitions.WithLabelValues("delete").Inc()
	s.Logger.Info("Post deleted", "post", post.ID, "user", post.UserID)

	return nil
}

func (s *Service) GetPost(ctx context.Context, postID string) (core.Post, error) {
	post, err := s.Content.GetPost(ctx, postID)
	if err != nil {
		return core.Post{}, err
	}

	s.enrich(ctx, &post)
	return post, nil
}

// ListByState lists posts in state. A nil viewer sees everything; otherwise only posts
// authored inside the viewer's scope are returned.
func (s *Service) ListByState(ctx context.Context, state core.PostState, viewerID *string) ([]core.Post, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w: unknown post state %q", core.ErrValidation, state)
	}

	filter, err := s.filter(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	filter.State = state

	posts, err := s.Content.FindPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, postPointers(posts)...)
	return posts, nil
}

func (s *Service) FullChallengeInfo(ctx context.Context, challengeID string, viewerID *string) (core.ChallengeInfo, error) {
	challenge, err := s.Content.GetChallenge(ctx, challengeID)
	if err != nil {
		return core.ChallengeInfo{}, err
	}

	filter, err := s.filter(ctx, viewerID)
	if err != nil {
		return core.ChallengeInfo{}, err
	}
	filter.ChallengeID = challenge.ID

	created, accepted, completed, err := s.partition(ctx, filter)
	if err != nil {
		return core.ChallengeInfo{}, err
	}

	if challenge.Place != nil && s.Places != nil {
		s.Places.EnrichPlace(ctx, challenge.Place)
	}

	return core.ChallengeInfo{
		Challenge: challenge,
		Created:   created,
		Accepted:  accepted,
		Completed: completed,
	}, nil
}

func (s *Service) FullPlaceInfo(ctx context.Context, placeID string, viewerID *string) (core.PlaceInfo, error) {
	place, err := s.Content.GetPlace(ctx, placeID)
	if err != nil {
		return core.PlaceInfo{}, err
	}

	filter, err := s.filter(ctx, viewerID)
	if err != nil {
		return core.PlaceInfo{}, err
	}
	filter.PlaceID = place.ID

	created, accepted, completed, err := s.partition(ctx, filter)
	if err != nil {
		return core.PlaceInfo{}, err
	}

	if s.Places != nil {
		s.Places.EnrichPlace(ctx, &place)
	}

	return core.PlaceInfo{
		Place:     place,
		Created:   created,
		Accepted:  accepted,
		Completed: completed,
	}, nil
}

func (s *Service) partition(ctx context.Context, filter core.PostFilter) (created, accepted, completed []core.Post, err error) {
	parts := make(map[core.PostState][]core.Post, len(core.PostStates))

	for _, state := range core.PostStates {
		filter.State = state

		posts, err := s.Content.FindPosts(ctx, filter)
		if err != nil {
			return nil, nil, nil, err
		}

		s.enrich(ctx, postPointers(posts)...)
		parts[state] = posts
	}

	return parts[core.PostStateCreated], parts[core.PostStateAccepted], parts[core.PostStateCompleted], nil
}

func (s *Service) filter(ctx context.Context, viewerID *string) (core.PostFilter, error) {
	if viewerID == nil {
		return core.PostFilter{}, nil
	}

	scope, err := s.Scope.Scope(ctx, *viewerID)
	if err != nil {
		return core.PostFilter{}, err
	}
	return core.PostFilter{UserIDs: scope}, nil
}

func (s *Service) requireUsers(ctx context.Context, ids ...string) error {
	ok, err := s.Users.Exists(ctx, ids...)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %v", core.ErrNotFound, ids)
	}
	return nil
}

func (s *Service) fanout(ctx context.Context, actorID, contentID string) {
	if err := s.Feed.WriteFeed(ctx, actorID, contentID); err != nil {
		fanoutErrors.Inc()
		s.Logger.Error("Feed fan-out failed", "actor", actorID, "content", contentID, "error", err)
	}
}

func (s *Service) enrich(ctx context.Context, posts ...*core.Post) {
	if s.Places == nil || len(posts) == 0 {
		return
	}
	s.Places.Enrich(ctx, posts...)
}

func postPointers(posts []core.Post) []*core.Post {
	ptrs := make([]*core.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	return ptrs
}
