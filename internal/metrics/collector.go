// Package metrics exports table size estimates and serves the Prometheus endpoint.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm/schema"

	"manestream/internal/core"
)

var (
	// TableCount holds the estimated row count per table.
	TableCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "manestream_table_estimated_count",
		Help: "Estimated record count for a table.",
	}, []string{"table"})
)

var collectedTables = []schema.Tabler{
	core.User{},
	core.FriendEdge{},
	core.Place{},
	core.Challenge{},
	core.Post{},
	core.FeedEntry{},
}

type Collector struct {
	Logger *slog.Logger
	DB     core.DB

	Interval time.Duration
}

func (c *Collector) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "metrics.Collector")
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
	return nil
}

func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Logger.Debug("Collecting metrics")
			c.Collect()
		}
	}
}

// Collect refreshes every table gauge once. A failing table keeps its previous value.
func (c *Collector) Collect() {
	for _, tabler := range collectedTables {
		if err := c.collectTableEstimatedCount(tabler); err != nil {
			c.Logger.Warn("Failed to estimate table size", "table", tabler.TableName(), "error", err)
		}
	}
}

func (c *Collector) collectTableEstimatedCount(tabler schema.Tabler) error {
	count, err := c.DB.EstimatedCount(tabler.TableName())
	if err != nil {
		return err
	}
	TableCount.WithLabelValues(tabler.TableName()).Set(float64(count))
	return nil
}
