package content_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alejandrodnm/miyomi/internal/adapters/content"
	"github.com/alejandrodnm/miyomi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPick() domain.Pick {
	return domain.Pick{
		ID:        "pick-1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Opportunity: domain.Opportunity{
			Market: domain.MarketRecord{
				Source:   domain.SourcePolymarket,
				ID:       "516710",
				Title:    "Will BTC hit 100k?",
				Category: "Crypto",
				ClosesAt: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
				YesPrice: 91,
				NoPrice:  9,
			},
			Score:               62,
			RecommendedPosition: domain.PositionNo,
			Signals:             domain.Signals{Probability: 0.91},
		},
		Thesis:      []string{"Market overconfident in YES outcome at 91%", "Narrative hook: crypto"},
		Confidence:  0.62,
		TargetPrice: 29,
		StopLoss:    5,
	}
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "short", content.Trim("  short  ", 320))

	long := strings.Repeat("word ", 100)
	got := content.Trim(long, 320)
	assert.LessOrEqual(t, len(got), 320)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.True(t, utf8.ValidString(got))
}

func TestTrim_RuneBoundary(t *testing.T) {
	// cada "ñ" ocupa 2 bytes: cortar a un número impar no debe partir runes
	s := strings.Repeat("ñ", 200)
	got := content.Trim(s, 101)
	assert.LessOrEqual(t, len(got), 101)
	assert.True(t, utf8.ValidString(got))
}

func TestTemplate_Generate(t *testing.T) {
	text, err := content.NewTemplate().Generate(context.Background(), testPick())
	require.NoError(t, err)

	assert.Contains(t, text, `NO on "Will BTC hit 100k?" at 9¢`)
	assert.Contains(t, text, "Market overconfident in YES outcome at 91%.")
	assert.Contains(t, text, "Target 29¢, stop 5¢.")
	assert.LessOrEqual(t, len(text), content.MaxPostBytes)
}

func TestTemplate_Deterministic(t *testing.T) {
	g := content.NewTemplate()
	a, _ := g.Generate(context.Background(), testPick())
	b, _ := g.Generate(context.Background(), testPick())
	assert.Equal(t, a, b)
}

func TestTemplate_LongThesisTrimmed(t *testing.T) {
	p := testPick()
	p.Thesis = []string{strings.Repeat("very long reasoning ", 30), "second"}

	text, err := content.NewTemplate().Generate(context.Background(), p)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), content.MaxPostBytes)
}

func TestTemplate_SkipPick(t *testing.T) {
	p := testPick()
	p.Opportunity.RecommendedPosition = domain.PositionSkip

	_, err := content.NewTemplate().Generate(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func newOpenAIServer(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[1].Content, `NO on "Will BTC hit 100k?" at 9¢`)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLLM_Generate(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, `"Everyone's sure BTC hits 100k. I'm taking NO at 9¢. nfa"`)

	g, err := content.NewLLM(content.LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, nil)
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), testPick())
	require.NoError(t, err)
	assert.Equal(t, "Everyone's sure BTC hits 100k. I'm taking NO at 9¢. nfa", text)
}

func TestLLM_FallsBackToTemplate(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusInternalServerError, "")

	g, err := content.NewLLM(content.LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, content.NewTemplate())
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), testPick())
	require.NoError(t, err)
	assert.Contains(t, text, "Miyomi's call")
}

func TestLLM_ErrorWithoutFallback(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusInternalServerError, "")

	g, err := content.NewLLM(content.LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, nil)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), testPick())
	assert.Error(t, err)
}

func TestNewLLM_RequiresKey(t *testing.T) {
	_, err := content.NewLLM(content.LLMConfig{APIKey: "  "}, nil)
	assert.Error(t, err)
}
