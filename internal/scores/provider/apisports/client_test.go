package apisports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key", 2*time.Second, zap.NewNop())
}

const liveBody = `{
	"errors": [],
	"response": [
		{
			"id": "fx-1001",
			"sport": "soccer",
			"date": "2026-09-01T19:00:00Z",
			"status": {"short": "1H", "long": "First Half", "timer": "23:10"},
			"teams": {
				"home": {"name": "Flamengo", "logo": "https://cdn/flamengo.png"},
				"away": {"name": "Palmeiras", "logo": "https://cdn/palmeiras.png"}
			},
			"scores": {"home": 1, "away": 0},
			"venue": "Maracanã",
			"league": {"name": "Brasileirão", "season": 2026}
		},
		{
			"id": "fx-1002",
			"sport": "soccer",
			"date": "2026-09-01T16:00:00Z",
			"status": {"short": "FT", "long": "Full Time", "timer": ""},
			"teams": {
				"home": {"name": "Grêmio", "logo": ""},
				"away": {"name": "Internacional", "logo": ""}
			},
			"scores": {"home": 2, "away": 2},
			"venue": "Arena do Grêmio",
			"league": {"name": "Brasileirão", "season": 2026}
		}
	]
}`

func TestFetchLiveNormalizesRecords(t *testing.T) {
	var gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		assert.Equal(t, "/v1/games", r.URL.Path)
		assert.Equal(t, "soccer", r.URL.Query().Get("sport"))
		_, _ = w.Write([]byte(liveBody))
	})

	recs, err := c.FetchLive(context.Background(), model.SportSoccer, time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "test-key", gotKey)

	live := recs[0]
	assert.Equal(t, "fx-1001", live.GameID)
	assert.Equal(t, model.StatusLive, live.Status)
	assert.Equal(t, "Flamengo", live.HomeTeam)
	assert.Equal(t, 1, live.HomeScore)
	assert.Equal(t, "1H", live.Period)
	assert.Equal(t, "23:10", live.TimeRemaining)
	require.NotNil(t, live.StartedAt, "jogo ao vivo deve ter startedAt")
	assert.Nil(t, live.CompletedAt)
	assert.NotEmpty(t, live.Metadata)

	done := recs[1]
	assert.Equal(t, model.StatusFinal, done.Status)
	assert.Nil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt, "jogo finalizado deve ter completedAt")
}

func TestFetchLivePlanRestrictionIsProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// restrição de plano chega com HTTP 200 e envelope de erros
		_, _ = w.Write([]byte(`{"errors": ["your plan does not allow this endpoint"], "response": []}`))
	})

	_, err := c.FetchLive(context.Background(), model.SportSoccer, time.Now())
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
}

func TestFetchLiveHTTPErrors(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusInternalServerError} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.FetchLive(context.Background(), model.SportSoccer, time.Now())
		var pe *provider.Error
		require.ErrorAs(t, err, &pe, "status %d", status)
		assert.Equal(t, status, pe.StatusCode)
	}
}

func TestFetchByIDNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [], "response": []}`))
	})

	_, err := c.FetchByID(context.Background(), "fx-9999")
	assert.True(t, errors.Is(err, provider.ErrGameNotFound))
}

func TestFetchUpcomingForcesScheduled(t *testing.T) {
	// mesmo que o provedor responda um jogo em andamento, o contrato de
	// upcoming zera placar e força scheduled
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/games/upcoming", r.URL.Path)
		_, _ = w.Write([]byte(liveBody))
	})

	recs, err := c.FetchUpcoming(context.Background(), model.SportSoccer, 7)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, model.StatusScheduled, rec.Status)
		assert.Zero(t, rec.HomeScore)
		assert.Zero(t, rec.AwayScore)
		assert.Nil(t, rec.StartedAt)
		assert.Nil(t, rec.CompletedAt)
	}
}

func TestFetchLiveTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "", 50*time.Millisecond, zap.NewNop())
	_, err := c.FetchLive(context.Background(), model.SportSoccer, time.Now())
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
}
