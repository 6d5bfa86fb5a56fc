package net

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	maxIdleConns     = 10
	timeoutInSeconds = 60
	clientAgent      = "trustgate-artifact-scorer"
)

var reqTransport = &http.Transport{
	MaxIdleConns:          maxIdleConns,
	IdleConnTimeout:       timeoutInSeconds * time.Second,
	DisableCompression:    true,
	DisableKeepAlives:     false,
	ResponseHeaderTimeout: time.Duration(timeoutInSeconds) * time.Second,
}

// GetHTTPClient returns the shared HTTP client used for all unauthenticated
// outbound calls.
func GetHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   time.Duration(timeoutInSeconds) * time.Second,
		Transport: reqTransport,
	}
}

// GetOAuthClient returns an HTTP client that attaches the given token
// to every request. Used for the GitHub API.
func GetOAuthClient(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   "token",
			AccessToken: token,
		},
	)
	return oauth2.NewClient(ctx, ts)
}
