package flags

import (
	"fmt"
	"slices"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"manestream/internal/core"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

func envVars(name string) cli.ValueSourceChain {
	return cli.EnvVars("MANESTREAM_"+name, name)
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Aliases: []string{"d"},
	Usage:   "PostgreSQL connection string",
	Sources: envVars("DATABASE_URL"),
}

var NATSURL = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: envVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize NATS: create or update the place cache bucket",
	DefaultText: "false",
	Value:       false,
	Sources:     envVars("NATS_INIT"),
}

var FanoutConcurrency = &cli.IntFlag{
	Name:    "fanout-concurrency",
	Usage:   "How many feed entries are written at once during fan-out",
	Value:   8,
	Sources: envVars("FANOUT_CONCURRENCY"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Address the metrics server listens on",
	Value:   ":8080",
	Sources: envVars("METRICS_ADDR"),
}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: envVars("LOG_LEVEL"),
}

var Actor = &cli.StringFlag{
	Name:     "actor",
	Usage:    "ID of the user whose scope receives the post",
	Required: true,
}

var Post = &cli.StringFlag{
	Name:     "post",
	Usage:    "ID of the post to fan out",
	Required: true,
}

var User = &cli.StringFlag{
	Name:     "user",
	Aliases:  []string{"u"},
	Usage:    "ID of the user",
	Required: true,
}

var Viewer = &cli.StringFlag{
	Name:  "viewer",
	Usage: "Only show posts visible to this user",
}

var State = &cli.StringFlag{
	Name:     "state",
	Usage:    "Post state: created, accepted or completed",
	Required: true,
	Validator: func(value string) error {
		if !core.PostState(value).Valid() {
			return fmt.Errorf("invalid post state: %s, allowed values are: %s", value, core.PostStates)
		}
		return nil
	},
}
