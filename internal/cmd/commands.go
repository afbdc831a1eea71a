package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"manestream/internal/cmd/flags"
	"manestream/internal/core"
	"manestream/internal/feed"
	"manestream/internal/lifecycle"
	"manestream/internal/metrics"
	inats "manestream/internal/nats"
	"manestream/internal/persistence"
	"manestream/internal/persistence/content"
	feedstore "manestream/internal/persistence/feed"
	"manestream/internal/persistence/friends"
	"manestream/internal/persistence/users"
	"manestream/internal/places"
	"manestream/internal/visibility"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Apply or roll back database migrations",
	Commands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply every pending migration",
			Action: func(ctx context.Context, c *cli.Command) error {
				return run(ctx, c, migrationServices(
					pal.Provide[*persistence.MigrationUpRunner, persistence.MigrationUpRunner](),
				)...)
			},
		},
		{
			Name:  "down",
			Usage: "Roll back the latest migration",
			Action: func(ctx context.Context, c *cli.Command) error {
				return run(ctx, c, migrationServices(
					pal.Provide[*persistence.MigrationDownRunner, persistence.MigrationDownRunner](),
				)...)
			},
		},
	},
}

var refeedCmd = &cli.Command{
	Name:  "refeed",
	Usage: "Fan a post out to its author's friends again",
	Flags: []cli.Flag{
		flags.Actor,
		flags.Post,
		flags.FanoutConcurrency,
		flags.NATSURL,
		flags.InitNATS,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(feedServices(),
			pal.Provide[*refeeder, refeeder](),
		)...)
	},
}

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Print a user's feed",
	Flags: []cli.Flag{
		flags.User,
		flags.NATSURL,
		flags.InitNATS,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(feedServices(),
			pal.Provide[*feedPrinter, feedPrinter](),
		)...)
	},
}

var postsCmd = &cli.Command{
	Name:  "posts",
	Usage: "Print posts in a state, optionally as seen by a viewer",
	Flags: []cli.Flag{
		flags.State,
		flags.Viewer,
		flags.NATSURL,
		flags.InitNATS,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(feedServices(),
			pal.Provide[core.UserRepository, users.Repository](),
			pal.Provide[core.ContentLifecycle, lifecycle.Service](),
			pal.Provide[*postsPrinter, postsPrinter](),
		)...)
	},
}

var metricsServerCmd = &cli.Command{
	Name:  "metrics-server",
	Usage: "Serve Prometheus metrics and record table size estimates",
	Flags: []cli.Flag{
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			pal.Provide[core.DB, persistence.DB](),
			pal.Provide[core.MetricsCollector, metrics.Collector](),
			pal.Provide[core.MetricsServer, metrics.HTTPServer](),
		)
	},
}

func migrationServices(runner pal.ServiceImpl) []pal.ServiceImpl {
	return []pal.ServiceImpl{
		pal.Provide[core.DB, persistence.DB](),
		pal.Provide[core.Migrator, persistence.Migrator](),
		runner,
	}
}

// feedServices is everything FeedIndex needs, place enrichment included.
func feedServices() []pal.ServiceImpl {
	return []pal.ServiceImpl{
		pal.Provide[core.DB, persistence.DB](),
		pal.Provide[*inats.NATS, inats.NATS](),
		pal.Provide[core.PlaceCache, inats.PlaceCache](),
		pal.Provide[core.PlaceLookup, places.Enricher](),
		pal.Provide[core.FriendshipGraph, friends.Repository](),
		pal.Provide[core.VisibilityScope, visibility.Scope](),
		pal.Provide[core.ContentRepository, content.Repository](),
		pal.Provide[core.FeedRepository, feedstore.Repository](),
		pal.Provide[core.FeedIndex, feed.Index](),
	}
}
