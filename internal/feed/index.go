// Package feed maintains per-user feeds by fanning content out to the author's
// visibility scope at write time.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"manestream/internal/config"
	"manestream/internal/core"
	"manestream/pkg/async"
)

var (
	fanoutWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "manestream_feed_fanout_writes_total",
		Help: "Feed entries written during fan-out, by result.",
	}, []string{"result"})

	fanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "manestream_feed_fanout_failures_total",
		Help: "Fan-outs that left at least one recipient without an entry.",
	})
)

type Index struct {
	Logger *slog.Logger
	Config *config.Config

	Scope   core.VisibilityScope
	Store   core.FeedRepository
	Content core.ContentRepository
	Places  core.PlaceLookup

	Now func() time.Time
}

func (i *Index) Init(_ context.Context) error {
	i.Logger = i.Logger.With("component", "feed.Index")
	return nil
}

// WriteFeed upserts one entry per member of the actor's scope, the actor included.
// Every recipient is attempted; failures are returned joined.
func (i *Index) WriteFeed(ctx context.Context, actorID, contentID string) error {
	recipients, err := i.Scope.Scope(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolving scope of %s: %w", actorID, err)
	}

	now := i.now()

	err = async.WorkerPool(ctx, i.concurrency(), recipients, func(ctx context.Context, ownerID string) error {
		err := i.Store.Upsert(ctx, core.FeedEntry{
			OwnerUserID: ownerID,
			ContentID:   contentID,
			UpdatedAt:   now,
		})
		if err != nil {
			fanoutWrites.WithLabelValues("error").Inc()
			return fmt.Errorf("feed of %s: %w", ownerID, err)
		}

		fanoutWrites.WithLabelValues("ok").Inc()
		return nil
	})
	if err != nil {
		fanoutFailures.Inc()
		return err
	}

	i.Logger.Debug("Feed written", "actor", actorID, "content", contentID, "recipients", len(recipients))
	return nil
}

// LoadFeed returns the user's feed, newest first. Entries whose post no longer exists
// are skipped.
func (i *Index) LoadFeed(ctx context.Context, userID string) ([]core.FeedItem, error) {
	entries, err := i.Store.ForOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return []core.FeedItem{}, nil
	}

	posts, err := i.Content.GetPosts(ctx, lo.Map(entries, func(e core.FeedEntry, _ int) string {
		return e.ContentID
	})...)
	if err != nil {
		return nil, err
	}

	items := make([]core.FeedItem, 0, len(entries))
	for _, entry := range entries {
		post, ok := posts[entry.ContentID]
		if !ok {
			i.Logger.Warn("Skipping stale feed entry", "owner", userID, "content", entry.ContentID)
			continue
		}
		items = append(items, core.FeedItem{Entry: entry, Post: post})
	}

	if i.Places != nil {
		ptrs := make([]*core.Post, len(items))
		for n := range items {
			ptrs[n] = &items[n].Post
		}
		i.Places.Enrich(ctx, ptrs...)
	}

	return items, nil
}

func (i *Index) now() time.Time {
	if i.Now != nil {
		return i.Now().UTC()
	}
	return time.Now().UTC()
}

func (i *Index) concurrency() int {
	if i.Config == nil {
		return 1
	}
	return i.Config.FanoutConcurrency
}
