package gplaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	placeDetails = "/maps/api/place/details/json"

	detailFields = "place_id,name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,geometry"
)

var (
	ErrNotFound       = errors.New("place not found")
	ErrRequestFailed  = errors.New("places request failed")
	ErrMissingPlaceID = errors.New("place id is required")
)

// https://developers.google.com/maps/documentation/places/web-service/details
type Place struct {
	PlaceID              string   `json:"place_id"`
	Name                 string   `json:"name"`
	FormattedAddress     string   `json:"formatted_address"`
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Website              string   `json:"website"`
	Rating               float64  `json:"rating"`
	UserRatingsTotal     int      `json:"user_ratings_total"`
	Geometry             Geometry `json:"geometry"`
}

type Geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type detailsResponse struct {
	Result       *Place `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Details fetches a single place by its Google place id.
func (c *Client) Details(ctx context.Context, placeID string) (*Place, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, ErrMissingPlaceID
	}

	res, err := c.r(ctx).
		SetQueryParams(map[string]string{
			"place_id": placeID,
			"fields":   detailFields,
		}).
		SetResult(&detailsResponse{}).
		Get(placeDetails)
	if err != nil {
		return nil, err
	}

	if res.IsError() {
		return nil, fmt.Errorf("%w: status code %d", ErrRequestFailed, res.StatusCode())
	}

	body := res.Result().(*detailsResponse)

	switch body.Status {
	case "OK":
		if body.Result == nil {
			return nil, fmt.Errorf("%w: empty result", ErrRequestFailed)
		}
		return body.Result, nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return nil, fmt.Errorf("%w: %s", ErrNotFound, placeID)
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrRequestFailed, body.Status, body.ErrorMessage)
	}
}
