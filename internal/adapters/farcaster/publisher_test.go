package farcaster_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/miyomi/internal/adapters/farcaster"
	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeynar_Publish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/farcaster/cast", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "signer-1", body["signer_uuid"])
		assert.Equal(t, "fading the BTC crowd", body["text"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"cast":{"hash":"0xabcdef0123456789","author":{"username":"miyomi"}}}`))
	}))
	defer srv.Close()

	p, err := farcaster.NewNeynar(farcaster.Config{BaseURL: srv.URL, APIKey: "secret", SignerUUID: "signer-1"})
	require.NoError(t, err)

	res, err := p.Publish(context.Background(), "fading the BTC crowd")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0123456789", res.ID)
	assert.Equal(t, "https://warpcast.com/miyomi/0xabcdef01", res.URL)
}

func TestNeynar_RejectsLongText(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p, err := farcaster.NewNeynar(farcaster.Config{BaseURL: srv.URL, APIKey: "k", SignerUUID: "s"})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), strings.Repeat("x", 321))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int32(0), calls.Load())
}

func TestNeynar_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"signer not approved"}`))
	}))
	defer srv.Close()

	p, err := farcaster.NewNeynar(farcaster.Config{BaseURL: srv.URL, APIKey: "k", SignerUUID: "s"})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "signer not approved")
}

func TestNewNeynar_RequiresCredentials(t *testing.T) {
	_, err := farcaster.NewNeynar(farcaster.Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestConsole_Publish(t *testing.T) {
	var buf bytes.Buffer
	res, err := farcaster.NewConsoleWriter(&buf).Publish(context.Background(), "NO on BTC at 9¢")
	require.NoError(t, err)
	assert.Empty(t, res.ID)
	assert.Contains(t, buf.String(), "NO on BTC at 9¢")

	_, err = farcaster.NewConsoleWriter(&buf).Publish(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
