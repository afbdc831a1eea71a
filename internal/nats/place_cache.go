package nats

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"manestream/internal/core"
)

// PlaceCache stores place details as JSON under their external id. Expiry is the
// bucket's TTL.
type PlaceCache struct {
	NATS *NATS
}

func (c *PlaceCache) Get(ctx context.Context, externalID string) (core.PlaceDetail, bool, error) {
	return getPlace(ctx, c.NATS.KV, externalID)
}

func (c *PlaceCache) Put(ctx context.Context, detail core.PlaceDetail) error {
	return putPlace(ctx, c.NATS.KV, detail)
}

func getPlace(ctx context.Context, kv jetstream.KeyValue, externalID string) (core.PlaceDetail, bool, error) {
	entry, err := kv.Get(ctx, key(externalID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return core.PlaceDetail{}, false, nil
		}
		return core.PlaceDetail{}, false, err
	}

	var detail core.PlaceDetail
	if err := json.Unmarshal(entry.Value(), &detail); err != nil {
		return core.PlaceDetail{}, false, fmt.Errorf("decoding cached place %s: %w", externalID, err)
	}
	return detail, true, nil
}

func putPlace(ctx context.Context, kv jetstream.KeyValue, detail core.PlaceDetail) error {
	value, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	if _, err := kv.Put(ctx, key(detail.ExternalID), value); err != nil {
		return fmt.Errorf("failed to store place %s: %w", detail.ExternalID, err)
	}
	return nil
}

// Google place ids may contain characters KV keys do not allow. The URL-safe
// base64 alphabet is a subset of the allowed ones.
func key(externalID string) string {
	return "place." + base64.RawURLEncoding.EncodeToString([]byte(externalID))
}
