package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
	"github.com/radieske/social-bets-platform/internal/scores/store"
)

const (
	// DefaultTTL é a idade máxima do cache antes de uma leitura disparar fetch
	DefaultTTL = 300 * time.Second

	// MaxDateRange limita consultas por período pra manter os range scans baratos
	MaxDateRange = 7 * 24 * time.Hour

	upcomingLimit     = 5
	recentLimit       = 5
	recentWindowHours = 24
)

// ErrGameNotFound indica jogo ausente no cache e no provedor
var ErrGameNotFound = errors.New("game not found")

// ValidationError sinaliza entrada inválida do chamador; nunca é retentado
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Store é o que o orquestrador precisa do cache persistente (implementado
// por store.Postgres)
type Store interface {
	Upsert(ctx context.Context, rec model.GameRecord) (model.GameRecord, error)
	FindByGameID(ctx context.Context, gameID string) (model.GameRecord, error)
	FindLive(ctx context.Context, sport model.SportType) ([]model.GameRecord, error)
	FindUpcoming(ctx context.Context, sport model.SportType, limit int) ([]model.GameRecord, error)
	FindRecentlyCompleted(ctx context.Context, sport model.SportType, hoursBack, limit int) ([]model.GameRecord, error)
	FindByDateRange(ctx context.Context, sport model.SportType, start, end time.Time) ([]model.GameRecord, error)
	GetCacheStatus(ctx context.Context, sport model.SportType) (model.CacheStatus, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// RefreshLock deduplica fetches concorrentes da mesma modalidade (leitura
// stale x refresher em background). Best-effort: sem o lock o pior caso é um
// fetch duplicado idempotente.
type RefreshLock interface {
	// TryLock retorna ok=false quando outro fetch da modalidade está em voo;
	// release deve ser chamado ao terminar quando ok=true
	TryLock(ctx context.Context, sport model.SportType) (release func(), ok bool, err error)
}

// Orchestrator decide, por requisição, entre servir do cache ou buscar no
// provedor, baseado na idade do cache versus o TTL. É o único ponto de
// integração entre Store e Adapter.
type Orchestrator struct {
	Log     *zap.Logger
	Store   Store
	Adapter provider.Adapter
	TTL     time.Duration
	Lock    RefreshLock // opcional

	OnCacheHit    func()                 // métricas: leitura servida sem fetch
	OnCacheMiss   func()                 // métricas: leitura que disparou fetch
	OnAfterUpsert func(model.GameRecord) // feed de eventos (Kafka/pubsub)
}

// New cria o orquestrador; ttl <= 0 cai no default de 300s
func New(log *zap.Logger, st Store, ad provider.Adapter, ttl time.Duration) *Orchestrator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Orchestrator{Log: log, Store: st, Adapter: ad, TTL: ttl}
}

// LiveScores é a resposta agregada de GetLiveScores
type LiveScores struct {
	Sport             model.SportType    `json:"sport"`
	Live              []model.GameRecord `json:"live"`
	Upcoming          []model.GameRecord `json:"upcoming"`
	RecentlyCompleted []model.GameRecord `json:"recentlyCompleted"`
	CacheAgeSeconds   int                `json:"cacheAgeSeconds"`
	LastUpdate        time.Time          `json:"lastUpdate"`
}

// GetLiveScores aplica a máquina de estados de frescor:
//
//	fresh  (idade < TTL)          => serve só do Store
//	stale  (idade >= TTL ou vazio) => fetch + upsert, depois serve do Store
//	forced (forceRefresh)          => fetch incondicional
func (o *Orchestrator) GetLiveScores(ctx context.Context, sport model.SportType, forceRefresh bool) (*LiveScores, error) {
	if !sport.Valid() {
		return nil, validationErrf("invalid sport type %q", sport)
	}

	cs, err := o.Store.GetCacheStatus(ctx, sport)
	if err != nil {
		return nil, err
	}

	if forceRefresh || cs.Age(time.Now()) >= o.TTL {
		if o.OnCacheMiss != nil {
			o.OnCacheMiss()
		}
		// fetch implícito: falha de provedor já foi mascarada pelo Adapter;
		// o que propaga daqui são só erros de Store
		if _, err := o.refreshSport(ctx, sport); err != nil {
			return nil, err
		}
	} else if o.OnCacheHit != nil {
		o.OnCacheHit()
	}

	live, err := o.Store.FindLive(ctx, sport)
	if err != nil {
		return nil, err
	}
	upcoming, err := o.Store.FindUpcoming(ctx, sport, upcomingLimit)
	if err != nil {
		return nil, err
	}
	recent, err := o.Store.FindRecentlyCompleted(ctx, sport, recentWindowHours, recentLimit)
	if err != nil {
		return nil, err
	}

	cs, err = o.Store.GetCacheStatus(ctx, sport)
	if err != nil {
		return nil, err
	}
	age := 0
	if !cs.LastUpdated.IsZero() {
		age = int(time.Since(cs.LastUpdated).Seconds())
		if age < 0 {
			age = 0
		}
	}

	return &LiveScores{
		Sport:             sport,
		Live:              live,
		Upcoming:          upcoming,
		RecentlyCompleted: recent,
		CacheAgeSeconds:   age,
		LastUpdate:        cs.LastUpdated,
	}, nil
}

// GetGameByID consulta o Store primeiro; ausente ou mais velho que o TTL,
// tenta um fetch unitário no Adapter. Ausente nos dois lados => ErrGameNotFound.
func (o *Orchestrator) GetGameByID(ctx context.Context, gameID string) (model.GameRecord, error) {
	if gameID == "" {
		return model.GameRecord{}, validationErrf("gameId is required")
	}

	cached, err := o.Store.FindByGameID(ctx, gameID)
	haveCached := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.GameRecord{}, err
	}
	if haveCached && time.Since(cached.LastUpdated) < o.TTL {
		if o.OnCacheHit != nil {
			o.OnCacheHit()
		}
		return cached, nil
	}

	if o.OnCacheMiss != nil {
		o.OnCacheMiss()
	}
	fetched, err := o.Adapter.FetchByID(ctx, gameID)
	if err != nil {
		if haveCached {
			// stale vale mais que erro pro leitor
			return cached, nil
		}
		if errors.Is(err, provider.ErrGameNotFound) {
			return model.GameRecord{}, ErrGameNotFound
		}
		return model.GameRecord{}, err
	}

	saved, err := o.Store.Upsert(ctx, fetched)
	if err != nil {
		return model.GameRecord{}, err
	}
	o.notifyUpsert(saved)
	return saved, nil
}

// GetScoresByDateRange é leitura pura do Store; nunca dispara Adapter.
// Rejeita intervalo invertido e janelas acima de 7 dias.
func (o *Orchestrator) GetScoresByDateRange(ctx context.Context, sport model.SportType, start, end time.Time) ([]model.GameRecord, error) {
	if !sport.Valid() {
		return nil, validationErrf("invalid sport type %q", sport)
	}
	if start.After(end) {
		return nil, validationErrf("start date %s is after end date %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if end.Sub(start) > MaxDateRange {
		return nil, validationErrf("date range exceeds 7 days")
	}
	return o.Store.FindByDateRange(ctx, sport, start, end)
}

// RefreshScores força fetch + upsert de uma modalidade. Ao contrário do
// caminho stale implícito, falha de Adapter aqui é devolvida ao chamador —
// foi um pedido explícito de refresh.
func (o *Orchestrator) RefreshScores(ctx context.Context, sport model.SportType) (int, error) {
	if !sport.Valid() {
		return 0, validationErrf("invalid sport type %q", sport)
	}
	return o.refreshSport(ctx, sport)
}

// RefreshAllScores roda RefreshScores sequencialmente para o conjunto fixo de
// modalidades. Falha em uma modalidade é logada e contada como zero; nunca
// bloqueia as demais.
func (o *Orchestrator) RefreshAllScores(ctx context.Context) map[model.SportType]int {
	out := make(map[model.SportType]int, len(model.TrackedSports))
	for _, sport := range model.TrackedSports {
		n, err := o.refreshSport(ctx, sport)
		if err != nil {
			o.Log.Warn("refresh failed for sport",
				zap.String("sport", string(sport)), zap.Error(err))
			out[sport] = 0
			continue
		}
		out[sport] = n
	}
	return out
}

// CleanupOldScores delega a varredura de retenção ao Store
func (o *Orchestrator) CleanupOldScores(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, validationErrf("retention days must be >= 1, got %d", days)
	}
	return o.Store.DeleteOlderThan(ctx, days)
}

// GetCacheStatistics retorna o sumário de todas as modalidades válidas,
// inclusive "other", que não entra no refresh mas pode ter jogos cacheados
func (o *Orchestrator) GetCacheStatistics(ctx context.Context) (map[model.SportType]model.CacheStatus, error) {
	out := make(map[model.SportType]model.CacheStatus, len(model.AllSports))
	for _, sport := range model.AllSports {
		cs, err := o.Store.GetCacheStatus(ctx, sport)
		if err != nil {
			return nil, err
		}
		out[sport] = cs
	}
	return out, nil
}

// refreshSport busca a slate corrente da modalidade e grava cada jogo no
// Store. Com o lock ocupado (outro fetch da mesma modalidade em voo) retorna
// zero e deixa o leitor seguir com o estado atual do cache.
func (o *Orchestrator) refreshSport(ctx context.Context, sport model.SportType) (int, error) {
	if o.Lock != nil {
		release, ok, err := o.Lock.TryLock(ctx, sport)
		if err != nil {
			// lock indisponível degrada pro cenário aceito de overwrite idempotente
			o.Log.Warn("refresh lock unavailable, proceeding without dedup", zap.Error(err))
		} else if !ok {
			o.Log.Debug("refresh already in flight, skipping fetch",
				zap.String("sport", string(sport)))
			return 0, nil
		} else {
			defer release()
		}
	}

	recs, err := o.Adapter.FetchLive(ctx, sport, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, rec := range recs {
		saved, err := o.Store.Upsert(ctx, rec)
		if err != nil {
			return count, err
		}
		o.notifyUpsert(saved)
		count++
	}
	return count, nil
}

func (o *Orchestrator) notifyUpsert(rec model.GameRecord) {
	if o.OnAfterUpsert != nil {
		o.OnAfterUpsert(rec)
	}
}
