package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrNotFound = errors.New("URL not found")

// GetJSON retrieves the URL content and decodes it into the passed target.
func GetJSON[T any](ctx context.Context, url string, target *T) error {
	resp, err := getResp(ctx, url, "")
	if err != nil {
		return fmt.Errorf("error executing HTTP GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding content: %w", err)
	}
	return nil
}

// GetText retrieves the URL content as a string. Returns ErrNotFound on 404.
func GetText(ctx context.Context, url, token string) (string, error) {
	resp, err := getResp(ctx, url, token)
	if err != nil {
		return "", fmt.Errorf("error executing HTTP GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading content: %w", err)
	}
	return string(b), nil
}

// PostJSON sends the body as JSON to the URL and decodes the JSON response
// into target. The bearer token is optional.
func PostJSON[T any](ctx context.Context, url, token string, body any, target *T) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("error creating HTTP POST request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := GetHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("error executing HTTP POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func getResp(ctx context.Context, url, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP GET request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return GetHTTPClient().Do(req)
}
