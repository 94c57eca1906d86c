package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradevault/internal/errors"
	"tradevault/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *TokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := NewTokenStore(t.TempDir())
	return NewClient(srv.URL, tokens, opts...), tokens
}

func ok(w http.ResponseWriter, data interface{}) {
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    json.RawMessage(raw),
	})
}

func TestListTradesDecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades", r.URL.Path)
		ok(w, []models.Trade{{ID: "1", Symbol: "AAPL", PnL: 10}})
	}))

	trades, err := client.ListTrades(context.Background(), TradeFilter{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, models.ID("1"), trades[0].ID)
}

func TestListTradesEncodesFilter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("symbol"))
		assert.Equal(t, "stock", q.Get("asset_type"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Empty(t, q.Get("direction"), "zero fields are omitted")
		ok(w, []models.Trade{})
	}))

	_, err := client.ListTrades(context.Background(), TradeFilter{
		Symbol: "AAPL", AssetType: "stock", Limit: 5,
	})
	require.NoError(t, err)
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		ok(w, []models.Trade{})
	}))
	require.NoError(t, tokens.Save("secret-token"))

	_, err := client.ListTrades(context.Background(), TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", got)
}

func TestUnauthorizedClearsTokenAndFiresHookOnce(t *testing.T) {
	var hooks int32
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unauthorized"})
	}), WithSessionExpiredHandler(func() { atomic.AddInt32(&hooks, 1) }))
	require.NoError(t, tokens.Save("stale"))

	for i := 0; i < 3; i++ {
		_, err := client.ListTrades(context.Background(), TradeFilter{})
		assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	}

	assert.Empty(t, tokens.Token(), "credential cleared on first 401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hooks), "hook fires exactly once")
}

func TestForbiddenWithUpgradeFlag(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false, "error": "premium required", "upgrade": true,
		})
	}))

	_, err := client.CreateTrade(context.Background(), models.TradeInput{Symbol: "AAPL"})
	assert.ErrorIs(t, err, apperrors.ErrUpgradeRequired)
}

func TestForbiddenWithoutUpgradeIsPlainAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "not yours"})
	}))

	_, err := client.CreateTrade(context.Background(), models.TradeInput{Symbol: "AAPL"})
	assert.NotErrorIs(t, err, apperrors.ErrUpgradeRequired)

	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "not yours", apiErr.Message, "server message surfaced verbatim")
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		ok(w, []models.Trade{})
	}), WithTimeout(30*time.Millisecond))

	_, err := client.ListTrades(context.Background(), TradeFilter{})
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestDeleteTradeTolerates404(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "not found"})
	}))

	err := client.DeleteTrade(context.Background(), "gone")
	assert.NoError(t, err, "deleting an already-deleted trade converges")
}

func TestLoginStoresToken(t *testing.T) {
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "me@example.com", body["email"])
		ok(w, map[string]string{"token": "fresh-token"})
	}))

	require.NoError(t, client.Login(context.Background(), "me@example.com", "hunter2"))
	assert.Equal(t, "fresh-token", tokens.Token())
}

func TestLoginResetsExpiredLatch(t *testing.T) {
	var hooks int32
	unauthorized := true
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			ok(w, map[string]string{"token": "fresh"})
			return
		}
		if unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
			return
		}
		ok(w, []models.Trade{})
	}), WithSessionExpiredHandler(func() { atomic.AddInt32(&hooks, 1) }))

	_, err := client.ListTrades(context.Background(), TradeFilter{})
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, int32(1), atomic.LoadInt32(&hooks))

	require.NoError(t, client.Login(context.Background(), "me@example.com", "pw"))

	// A later expiry after re-login must fire the hook again.
	_, err = client.ListTrades(context.Background(), TradeFilter{})
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hooks))
}

func TestStreamDeliversChunksUntilDone(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\":\"Hello \"}\n")
		fmt.Fprint(w, "\n")
		fmt.Fprint(w, "data: {\"text\":\"world\"}\n")
		fmt.Fprint(w, "data: not-json\n") // malformed frame is skipped
		fmt.Fprint(w, "data: [DONE]\n")
		fmt.Fprint(w, "data: {\"text\":\"after the end\"}\n")
	}))

	var got string
	err := client.Stream(context.Background(), "/ai/performance", nil, func(chunk string) {
		got += chunk
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got, "nothing after the end marker is delivered")
}

func TestStreamOutlivesRequestTimeout(t *testing.T) {
	const chunks = 8
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < chunks; i++ {
			fmt.Fprint(w, "data: {\"text\":\"tok \"}\n")
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
		fmt.Fprint(w, "data: [DONE]\n")
	}), WithTimeout(150*time.Millisecond))

	// The stream runs well past the REST timeout; only the end marker, an
	// error frame, or ctx cancellation may end it.
	var got int
	err := client.Stream(context.Background(), "/ai/performance", nil, func(string) {
		got++
	})
	require.NoError(t, err)
	assert.Equal(t, chunks, got, "every chunk arrives even after the REST deadline")
}

func TestStreamErrorFrame(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"text\":\"partial\"}\n")
		fmt.Fprint(w, "data: {\"error\":\"model overloaded\"}\n")
	}))

	var got string
	err := client.Stream(context.Background(), "/ai/performance", nil, func(chunk string) {
		got += chunk
	})

	var streamErr *apperrors.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "model overloaded", streamErr.Message)
	assert.Equal(t, "partial", got, "chunks before the error frame are kept")
}

func TestStreamUpgradeGate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "upgrade": true})
	}))

	err := client.Stream(context.Background(), "/ai/performance", nil, func(string) {})
	assert.ErrorIs(t, err, apperrors.ErrUpgradeRequired)
}

func TestStreamCleanCloseWithoutMarker(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"text\":\"truncated but fine\"}\n")
	}))

	var got string
	err := client.Stream(context.Background(), "/ai/performance", nil, func(chunk string) {
		got += chunk
	})
	assert.NoError(t, err)
	assert.Equal(t, "truncated but fine", got)
}

func TestPingHitsHealthWithoutAuth(t *testing.T) {
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		ok(w, map[string]string{"status": "up"})
	}))
	require.NoError(t, tokens.Save("tok"))

	assert.NoError(t, client.Ping(context.Background()))
}

func TestTokenStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewTokenStore(dir)

	assert.Empty(t, s.Token())
	require.NoError(t, s.Save("abc"))
	assert.Equal(t, "abc", s.Token())

	// A fresh store over the same directory reads it back from disk.
	again := NewTokenStore(dir)
	assert.Equal(t, "abc", again.Token())

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
	assert.NoError(t, s.Clear(), "clearing twice is fine")
}
