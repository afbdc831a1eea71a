package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"manestream/internal/cmd/flags"
	"manestream/internal/config"
	"manestream/pkg/clicfg"
)

const (
	VERSION = "0.1.0"

	appName = "manestream"
)

var cmd = &cli.Command{
	Name:    appName,
	Usage:   "Manestream runs challenge feeds: friendships, posts and per-user timelines",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String(flags.LogLevel.Name)); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.LogLevel,
		flags.DatabaseURL,
	},
	Commands: []*cli.Command{
		migrateCmd,
		refeedCmd,
		feedCmd,
		postsCmd,
		metricsServerCmd,
	},
}

func Run() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, then overlays the flags set on c.
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := clicfg.ParseFlags(c, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, c *cli.Command, services ...pal.ServiceImpl) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	services = append(services,
		pal.ProvideConst[*slog.Logger](slog.Default()),
		pal.ProvideConst[*config.Config](cfg),
	)

	return pal.New(services...).
		InitTimeout(5*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(10*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}
