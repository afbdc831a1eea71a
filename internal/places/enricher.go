// Package places resolves place details through a read-through cache in front of
// Google Places.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"

	"manestream/internal/config"
	"manestream/internal/core"
	"manestream/pkg/gplaces"
)

var (
	enrichments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "manestream_place_enrichment_total",
		Help: "Place detail lookups, by result.",
	}, []string{"result"})

	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "manestream_places_request_latency",
			Help:    "Histogram of Google Places API request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_code"},
	)
)

type DetailsClient interface {
	Details(ctx context.Context, placeID string) (*gplaces.Place, error)
}

type Enricher struct {
	Logger *slog.Logger
	Config *config.Config
	Cache  core.PlaceCache

	// Client defaults to a gplaces client built from Config.
	Client DetailsClient

	owned *gplaces.Client
}

func (e *Enricher) Init(_ context.Context) error {
	e.Logger = e.Logger.With("component", "places.Enricher")

	if e.Client == nil {
		e.owned = gplaces.NewClient(&gplaces.ClientConfig{
			BaseURL:             e.Config.GooglePlacesURL,
			APIKey:              e.Config.GooglePlacesKey,
			TransportSettings:   gplaces.DefaultConfig.TransportSettings,
			ResponseMiddlewares: []resty.ResponseMiddleware{metricMiddleware},
		})
		e.Client = e.owned
	}

	return nil
}

func (e *Enricher) Shutdown(_ context.Context) error {
	if e.owned != nil {
		return e.owned.Close()
	}
	return nil
}

// LookupPlaceDetail returns the cached detail for externalID, fetching and caching it
// on a miss. A broken cache is bypassed.
func (e *Enricher) LookupPlaceDetail(ctx context.Context, externalID string) (core.PlaceDetail, error) {
	if externalID == "" {
		return core.PlaceDetail{}, fmt.Errorf("%w: place has no external id", core.ErrValidation)
	}

	detail, ok, err := e.Cache.Get(ctx, externalID)
	switch {
	case err != nil:
		e.Logger.Warn("Place cache read failed", "place", externalID, "error", err)
	case ok:
		enrichments.WithLabelValues("cache_hit").Inc()
		return detail, nil
	}

	place, err := e.Client.Details(ctx, externalID)
	if err != nil {
		if errors.Is(err, gplaces.ErrNotFound) {
			enrichments.WithLabelValues("not_found").Inc()
			return core.PlaceDetail{}, fmt.Errorf("%w: place %s", core.ErrNotFound, externalID)
		}
		enrichments.WithLabelValues("error").Inc()
		return core.PlaceDetail{}, err
	}

	detail = toDetail(externalID, place)
	enrichments.WithLabelValues("fetched").Inc()

	if err := e.Cache.Put(ctx, detail); err != nil {
		e.Logger.Warn("Place cache write failed", "place", externalID, "error", err)
	}

	return detail, nil
}

// Enrich attaches place details to the posts' places. Lookup failures are logged and
// leave the detail empty.
func (e *Enricher) Enrich(ctx context.Context, posts ...*core.Post) {
	resolved := map[string]*core.PlaceDetail{}

	for _, post := range posts {
		if post == nil || post.Place == nil || post.Place.ExternalID == "" {
			continue
		}

		id := post.Place.ExternalID
		detail, seen := resolved[id]
		if !seen {
			detail = e.lookup(ctx, id)
			resolved[id] = detail
		}
		post.Place.Detail = detail
	}
}

func (e *Enricher) EnrichPlace(ctx context.Context, place *core.Place) {
	if place == nil || place.ExternalID == "" {
		return
	}
	place.Detail = e.lookup(ctx, place.ExternalID)
}

func (e *Enricher) lookup(ctx context.Context, externalID string) *core.PlaceDetail {
	detail, err := e.LookupPlaceDetail(ctx, externalID)
	if err != nil {
		enrichments.WithLabelValues("skipped").Inc()
		e.Logger.Warn("Place enrichment skipped", "place", externalID, "error", err)
		return nil
	}
	return &detail
}

func toDetail(externalID string, place *gplaces.Place) core.PlaceDetail {
	return core.PlaceDetail{
		ExternalID:       externalID,
		Name:             place.Name,
		FormattedAddress: place.FormattedAddress,
		Phone:            place.FormattedPhoneNumber,
		Website:          place.Website,
		Rating:           place.Rating,
		UserRatingsTotal: place.UserRatingsTotal,
		Lat:              place.Geometry.Location.Lat,
		Lng:              place.Geometry.Location.Lng,
	}
}

func metricMiddleware(_ *resty.Client, response *resty.Response) error {
	reqURL, err := url.Parse(response.Request.URL)
	if err != nil {
		return err
	}

	apiLatency.WithLabelValues(
		response.Request.Method,
		reqURL.Path,
		strconv.Itoa(response.StatusCode()),
	).Observe(response.Duration().Seconds())

	return nil
}
