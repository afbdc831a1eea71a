package gplaces

import (
	"time"

	"resty.dev/v3"
)

const DefaultBaseURL = "https://maps.googleapis.com"

type ClientConfig struct {
	BaseURL string
	APIKey  string

	TransportSettings *resty.TransportSettings

	ResponseMiddlewares []resty.ResponseMiddleware
}

var DefaultConfig = &ClientConfig{
	BaseURL: DefaultBaseURL,
	TransportSettings: &resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		DialerKeepAlive:       30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 3 * time.Second,
	},
}
