package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/orchestrator"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
)

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr mapeia a taxonomia de erros pra status HTTP:
// validação => 400, não encontrado => 404, provedor (refresh explícito) => 502,
// resto (store) => 500
func (a *API) writeErr(w http.ResponseWriter, err error) {
	var ve *orchestrator.ValidationError
	var pe *provider.Error
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.Is(err, orchestrator.ErrGameNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sports data provider unavailable"})
	default:
		a.Log.Error("scores api internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// getLiveScores retorna placares ao vivo, próximos jogos e finalizados recentes.
// ?refresh=true força fetch no provedor independente da idade do cache.
func (a *API) getLiveScores(w http.ResponseWriter, r *http.Request) {
	sport := model.SportType(chi.URLParam(r, "sport"))
	force := r.URL.Query().Get("refresh") == "true"

	res, err := a.Scores.GetLiveScores(r.Context(), sport, force)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getScoresByRange retorna jogos com scheduled_at dentro de [start, end]
// Datas em RFC3339 ou YYYY-MM-DD; janela máxima de 7 dias
func (a *API) getScoresByRange(w http.ResponseWriter, r *http.Request) {
	sport := model.SportType(chi.URLParam(r, "sport"))

	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start date"})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end date"})
		return
	}

	recs, err := a.Scores.GetScoresByDateRange(r.Context(), sport, start, end)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sport": sport, "games": recs})
}

// getGameByID retorna um jogo pelo identificador externo
func (a *API) getGameByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := a.Scores.GetGameByID(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// refreshSport força fetch + upsert de uma modalidade; falha de provedor
// aqui é devolvida ao chamador (pedido explícito)
func (a *API) refreshSport(w http.ResponseWriter, r *http.Request) {
	sport := model.SportType(chi.URLParam(r, "sport"))

	n, err := a.Scores.RefreshScores(r.Context(), sport)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sport": sport, "updated": n})
}

// refreshAll roda o refresh de todas as modalidades rastreadas
func (a *API) refreshAll(w http.ResponseWriter, r *http.Request) {
	counts := a.Scores.RefreshAllScores(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"updated": counts})
}

// cleanup dispara a varredura de retenção; ?days sobrepõe o default de 7
func (a *API) cleanup(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid days"})
			return
		}
		days = n
	}

	deleted, err := a.Scores.CleanupOldScores(r.Context(), days)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// cacheStatus retorna o sumário do cache por modalidade
func (a *API) cacheStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Scores.GetCacheStatistics(r.Context())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// refresherStatus expõe o estado do loop em background
func (a *API) refresherStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Refresher.Status())
}

// refresherForce roda um ciclo de refresh fora da cadência
func (a *API) refresherForce(w http.ResponseWriter, r *http.Request) {
	counts := a.Refresher.ForceUpdate(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"updated": counts})
}

// parseDate aceita RFC3339 ou data simples YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
