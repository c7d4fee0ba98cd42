package kalshi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/alejandrodnm/miyomi/internal/adapters/kalshi"
	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../../testdata/fixtures/kalshi_markets.json"

func TestFetchMarkets_Success(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("cursor"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	c := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL})
	assert.Equal(t, domain.SourceKalshi, c.Name())

	markets, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)

	// el mercado liquidado se descarta
	require.Len(t, markets, 3)

	btc := markets[0]
	assert.Equal(t, domain.SourceKalshi, btc.Source)
	assert.Equal(t, "KXBTC-26DEC31-100K", btc.ID)
	assert.Equal(t, "will btc hit 100k??", btc.Title)
	assert.Equal(t, 90, btc.YesPrice)
	assert.Equal(t, 10, btc.NoPrice)
	// 310k y 2.4M contratos a 90¢ → USD
	assert.InDelta(t, 279000.0, btc.Volume24h, 0.001)
	assert.InDelta(t, 2160000.0, btc.VolumeTotal, 0.001)
	assert.True(t, btc.HasPriceChange)
	assert.Equal(t, 2.0, btc.PriceChange24h)
	// 95k USD con punto medio 50k
	assert.InDelta(t, 95.0/145.0, btc.LiquidityScore, 0.001)

	shutdown := markets[1]
	assert.Equal(t, 21, shutdown.YesPrice)
	assert.Equal(t, 79, shutdown.NoPrice)
	assert.Equal(t, 0.0, shutdown.PriceChange24h)
}

func TestFetchMarkets_FollowsCursor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 2 {
			assert.Equal(t, "page2", r.URL.Query().Get("cursor"))
		}
		resp := map[string]any{
			"markets": []map[string]any{{
				"ticker":     fmt.Sprintf("T-%d", n),
				"title":      fmt.Sprintf("Market %d", n),
				"status":     "active",
				"last_price": 30,
				"close_time": "2026-12-31T00:00:00Z",
			}},
		}
		if n == 1 {
			resp["cursor"] = "page2"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	markets, err := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL}).FetchMarkets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, markets, 2)
	assert.Equal(t, 30, markets[0].YesPrice, "sin bid/ask cae a last_price")
	assert.Equal(t, 70, markets[0].NoPrice)
	assert.False(t, markets[0].HasPriceChange)
}

func TestFetchMarkets_RespectsCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"markets": []map[string]any{
				{"ticker": "A", "title": "A", "status": "active", "last_price": 10, "close_time": "2026-12-31"},
				{"ticker": "B", "title": "B", "status": "active", "last_price": 20, "close_time": "2026-12-31"},
			},
			"cursor": "more",
		})
	}))
	defer srv.Close()

	markets, err := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL, MaxRecords: 2}).FetchMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, markets, 2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchMarkets_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL}).FetchMarkets(context.Background())
	assert.Error(t, err)
}

func TestParseMarkets_Fixture(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	markets, err := kalshi.ParseMarkets(data, 0)
	require.NoError(t, err)
	require.Len(t, markets, 3)
	assert.Equal(t, 48, markets[2].YesPrice)
	assert.Equal(t, 52, markets[2].NoPrice)
}

func TestParseMarkets_InvalidJSON(t *testing.T) {
	_, err := kalshi.ParseMarkets([]byte(`[`), 0)
	assert.Error(t, err)
}

func TestParseMarkets_VolumeInUSD(t *testing.T) {
	data := []byte(`{"markets":[{"ticker":"K1","title":"Will it rain in NYC?","status":"open",
		"yes_bid":20,"yes_ask":22,"volume":5000,"volume_24h":1000,
		"close_time":"2026-12-31T00:00:00Z"}]}`)

	markets, err := kalshi.ParseMarkets(data, 0)
	require.NoError(t, err)
	require.Len(t, markets, 1)

	// contratos × 21¢
	assert.InDelta(t, 210.0, markets[0].Volume24h, 0.001)
	assert.InDelta(t, 1050.0, markets[0].VolumeTotal, 0.001)
}
