package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/orchestrator"
	"github.com/radieske/social-bets-platform/internal/scores/refresher"
)

// Scores é a superfície do orquestrador exposta pela API REST
type Scores interface {
	GetLiveScores(ctx context.Context, sport model.SportType, forceRefresh bool) (*orchestrator.LiveScores, error)
	GetGameByID(ctx context.Context, gameID string) (model.GameRecord, error)
	GetScoresByDateRange(ctx context.Context, sport model.SportType, start, end time.Time) ([]model.GameRecord, error)
	RefreshScores(ctx context.Context, sport model.SportType) (int, error)
	RefreshAllScores(ctx context.Context) map[model.SportType]int
	CleanupOldScores(ctx context.Context, days int) (int64, error)
	GetCacheStatistics(ctx context.Context) (map[model.SportType]model.CacheStatus, error)
}

// Background é a superfície do refresher exposta pra visibilidade operacional
type Background interface {
	Status() refresher.Status
	ForceUpdate(ctx context.Context) map[model.SportType]int
}

// API expõe os endpoints REST do pipeline de placares
type API struct {
	Log       *zap.Logger
	Scores    Scores
	Refresher Background
	WSHandler http.HandlerFunc // upgrade WebSocket (nil desabilita a rota)
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/scores/{sport}", a.getLiveScores)             // placares ao vivo + próximos + recentes
	r.Get("/v1/scores/{sport}/range", a.getScoresByRange)    // jogos por período
	r.Get("/v1/games/{id}", a.getGameByID)                   // jogo individual
	r.Post("/v1/scores/{sport}/refresh", a.refreshSport)     // refresh explícito de uma modalidade
	r.Post("/v1/scores/refresh", a.refreshAll)               // refresh de todas as modalidades
	r.Delete("/v1/scores/cleanup", a.cleanup)                // varredura de retenção sob demanda
	r.Get("/v1/scores/cache/status", a.cacheStatus)          // sumário do cache por modalidade
	r.Get("/v1/refresher/status", a.refresherStatus)         // estado do loop em background
	r.Post("/v1/refresher/force", a.refresherForce)          // ciclo de refresh imediato
	if a.WSHandler != nil {
		r.Get("/v1/scores/ws", a.WSHandler) // feed ao vivo via WebSocket
	}
	return r
}
