package cmd

import (
	"context"
	"log/slog"

	"github.com/k0kubun/pp"

	"manestream/internal/config"
	"manestream/internal/core"
)

type refeeder struct {
	Logger *slog.Logger
	Config *config.Config
	Feed   core.FeedIndex
}

func (r *refeeder) Run(ctx context.Context) error {
	r.Logger.Info("Re-running fan-out", "actor", r.Config.ActorID, "post", r.Config.PostID)

	if err := r.Feed.WriteFeed(ctx, r.Config.ActorID, r.Config.PostID); err != nil {
		return err
	}

	r.Logger.Info("Fan-out finished", "actor", r.Config.ActorID, "post", r.Config.PostID)
	return nil
}

type feedPrinter struct {
	Config *config.Config
	Feed   core.FeedIndex
}

func (p *feedPrinter) Run(ctx context.Context) error {
	items, err := p.Feed.LoadFeed(ctx, p.Config.UserID)
	if err != nil {
		return err
	}

	pp.Println(items) //nolint:errcheck
	return nil
}

type postsPrinter struct {
	Config    *config.Config
	Lifecycle core.ContentLifecycle
}

func (p *postsPrinter) Run(ctx context.Context) error {
	var viewer *string
	if p.Config.Viewer != "" {
		viewer = &p.Config.Viewer
	}

	posts, err := p.Lifecycle.ListByState(ctx, core.PostState(p.Config.State), viewer)
	if err != nil {
		return err
	}

	pp.Println(posts) //nolint:errcheck
	return nil
}
