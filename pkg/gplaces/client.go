// Package gplaces is a small client for the Google Places web service.
package gplaces

import (
	"context"

	"resty.dev/v3"
)

type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig
	}

	settings := config.TransportSettings
	if settings == nil {
		settings = DefaultConfig.TransportSettings
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.NewWithTransportSettings(settings).SetBaseURL(baseURL)
	for _, m := range config.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	return &Client{
		client: client,
		apiKey: config.APIKey,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx).SetQueryParam("key", c.apiKey)
}
