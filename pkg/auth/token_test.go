package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDeviceCode_EmptyClientID(t *testing.T) {
	_, err := GetDeviceCode(context.Background(), "")
	assert.Error(t, err)
}

func TestGetToken_EmptyClientID(t *testing.T) {
	_, err := GetToken(context.Background(), "", &DeviceCode{})
	assert.Error(t, err)
}

func TestGetToken_NilCode(t *testing.T) {
	_, err := GetToken(context.Background(), "test-client", nil)
	assert.Error(t, err)
}

func TestGetDeviceCode_Flow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-client", r.URL.Query().Get("client_id"))
		_, _ = w.Write([]byte(`{
			"device_code": "dc_test",
			"user_code": "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in": 900,
			"interval": 5
		}`))
	}))
	t.Cleanup(srv.Close)

	dc, err := GetDeviceCodeWithEndpoints(context.Background(), "test-client",
		Endpoints{DeviceCodeURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "dc_test", dc.DeviceCode)
	assert.Equal(t, "ABCD-1234", dc.UserCode)
	assert.Equal(t, 900, dc.ExpiresInSec)
}

func TestGetDeviceCode_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	_, err := GetDeviceCodeWithEndpoints(context.Background(), "test-client",
		Endpoints{DeviceCodeURL: srv.URL})
	assert.Error(t, err)
}

func TestGetToken_Flow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dc_test", r.URL.Query().Get("device_code"))
		assert.Equal(t, grantType, r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"gho_test123","token_type":"bearer","scope":""}`))
	}))
	t.Cleanup(srv.Close)

	tok, err := GetTokenWithEndpoints(context.Background(), "test-client",
		&DeviceCode{DeviceCode: "dc_test", ExpiresInSec: 900},
		Endpoints{AccessCodeURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gho_test123", tok.AccessToken)
}

func TestGetToken_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"authorization_pending"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := GetTokenWithEndpoints(context.Background(), "test-client",
		&DeviceCode{DeviceCode: "dc_test", ExpiresInSec: 900},
		Endpoints{AccessCodeURL: srv.URL})
	assert.Error(t, err)
}
