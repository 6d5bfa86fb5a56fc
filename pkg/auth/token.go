// Package auth implements the GitHub device authorization flow used to
// obtain an API token without a personal access token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelaudit/trustgate/pkg/net"
)

const (
	deviceCodeURL = "https://github.com/login/device/code"
	accessCodeURL = "https://github.com/login/oauth/access_token"
	deviceScopes  = "" // no scopes requested (read-only public access)
	grantType     = "urn:ietf:params:oauth:grant-type:device_code"
)

// Endpoint overrides for tests; production uses the GitHub defaults.
type Endpoints struct {
	DeviceCodeURL string
	AccessCodeURL string
}

func (e Endpoints) deviceCode() string {
	if e.DeviceCodeURL != "" {
		return e.DeviceCodeURL
	}
	return deviceCodeURL
}

func (e Endpoints) accessCode() string {
	if e.AccessCodeURL != "" {
		return e.AccessCodeURL
	}
	return accessCodeURL
}

type DeviceCode struct {
	// Device verification code, used to poll for the access token.
	DeviceCode string `json:"device_code,omitempty"`
	// Code the user enters in the browser. 8 characters with a hyphen.
	UserCode string `json:"user_code,omitempty"`
	// URL where the user enters the user_code.
	VerificationURL string `json:"verification_uri,omitempty"`
	// Seconds before the codes expire. GitHub default is 900.
	ExpiresInSec int `json:"expires_in,omitempty"`
	// Minimum seconds between access token requests.
	Interval int `json:"interval,omitempty"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

func GetDeviceCode(ctx context.Context, clientID string) (*DeviceCode, error) {
	return GetDeviceCodeWithEndpoints(ctx, clientID, Endpoints{})
}

func GetDeviceCodeWithEndpoints(ctx context.Context, clientID string, ep Endpoints) (*DeviceCode, error) {
	if clientID == "" {
		return nil, errors.New("clientID is required")
	}

	res, err := postForm(ctx, ep.deviceCode(), map[string]string{
		"client_id": clientID,
		"scope":     deviceScopes,
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body := ""
		if b, err := io.ReadAll(res.Body); err == nil {
			body = string(b)
		}
		return nil, fmt.Errorf("failed to get device code: %s - %s", res.Status, body)
	}

	var dc DeviceCode
	if err := json.NewDecoder(res.Body).Decode(&dc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &dc, nil
}

func GetToken(ctx context.Context, clientID string, code *DeviceCode) (*AccessTokenResponse, error) {
	return GetTokenWithEndpoints(ctx, clientID, code, Endpoints{})
}

func GetTokenWithEndpoints(ctx context.Context, clientID string, code *DeviceCode, ep Endpoints) (*AccessTokenResponse, error) {
	if clientID == "" {
		return nil, errors.New("clientID is required")
	}
	if code == nil {
		return nil, errors.New("device code is nil")
	}

	expiresAt := time.Now().UTC().Add(time.Duration(code.ExpiresInSec) * time.Second)

	res, err := postForm(ctx, ep.accessCode(), map[string]string{
		"client_id":   clientID,
		"device_code": code.DeviceCode,
		"grant_type":  grantType,
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var t AccessTokenResponse
	if err := json.NewDecoder(res.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if time.Now().UTC().After(expiresAt) {
		return nil, errors.New("access token expired")
	}
	if t.AccessToken == "" {
		return nil, errors.New("access token is empty")
	}

	return &t, nil
}

func postForm(ctx context.Context, url string, params map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Add("content-type", "application/x-www-form-urlencoded")
	req.Header.Add("Accept", "application/json")

	res, err := net.GetHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return res, nil
}
