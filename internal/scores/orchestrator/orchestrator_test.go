package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
	"github.com/radieske/social-bets-platform/internal/scores/store"
)

// fakeStore guarda registros em memória, indexados por gameID
type fakeStore struct {
	games map[string]model.GameRecord

	upserts    int
	deleted    int64
	deletedArg int
	upsertErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: map[string]model.GameRecord{}}
}

func (f *fakeStore) put(rec model.GameRecord, updatedAt time.Time) {
	rec.LastUpdated = updatedAt
	f.games[rec.GameID] = rec
}

func (f *fakeStore) Upsert(_ context.Context, rec model.GameRecord) (model.GameRecord, error) {
	if f.upsertErr != nil {
		return model.GameRecord{}, f.upsertErr
	}
	f.upserts++
	rec.LastUpdated = time.Now()
	f.games[rec.GameID] = rec
	return rec, nil
}

func (f *fakeStore) FindByGameID(_ context.Context, gameID string) (model.GameRecord, error) {
	rec, ok := f.games[gameID]
	if !ok {
		return model.GameRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) FindLive(_ context.Context, sport model.SportType) ([]model.GameRecord, error) {
	var out []model.GameRecord
	for _, rec := range f.games {
		if rec.SportType == sport && rec.Status == model.StatusLive {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) FindUpcoming(_ context.Context, sport model.SportType, limit int) ([]model.GameRecord, error) {
	var out []model.GameRecord
	for _, rec := range f.games {
		if rec.SportType == sport && rec.Status == model.StatusScheduled && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRecentlyCompleted(_ context.Context, sport model.SportType, _, limit int) ([]model.GameRecord, error) {
	var out []model.GameRecord
	for _, rec := range f.games {
		if rec.SportType == sport && rec.Status == model.StatusFinal && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByDateRange(_ context.Context, sport model.SportType, start, end time.Time) ([]model.GameRecord, error) {
	var out []model.GameRecord
	for _, rec := range f.games {
		if rec.SportType == sport && !rec.ScheduledAt.Before(start) && !rec.ScheduledAt.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCacheStatus(_ context.Context, sport model.SportType) (model.CacheStatus, error) {
	cs := model.CacheStatus{SportType: sport, ByStatus: map[model.GameStatus]int{}}
	for _, rec := range f.games {
		if rec.SportType != sport {
			continue
		}
		cs.Total++
		cs.ByStatus[rec.Status]++
		if rec.LastUpdated.After(cs.LastUpdated) {
			cs.LastUpdated = rec.LastUpdated
		}
	}
	return cs, nil
}

func (f *fakeStore) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	f.deletedArg = days
	return f.deleted, nil
}

// fakeAdapter devolve slates fixas por modalidade; pode falhar seletivamente
type fakeAdapter struct {
	slates   map[model.SportType][]model.GameRecord
	single   map[string]model.GameRecord
	errs     map[model.SportType]error
	fetchErr error

	liveCalls int
	byIDCalls int
}

func (f *fakeAdapter) FetchLive(_ context.Context, sport model.SportType, _ time.Time) ([]model.GameRecord, error) {
	f.liveCalls++
	if err := f.errs[sport]; err != nil {
		return nil, err
	}
	return f.slates[sport], nil
}

func (f *fakeAdapter) FetchByID(_ context.Context, gameID string) (model.GameRecord, error) {
	f.byIDCalls++
	if f.fetchErr != nil {
		return model.GameRecord{}, f.fetchErr
	}
	rec, ok := f.single[gameID]
	if !ok {
		return model.GameRecord{}, provider.ErrGameNotFound
	}
	return rec, nil
}

func (f *fakeAdapter) FetchUpcoming(_ context.Context, sport model.SportType, _ int) ([]model.GameRecord, error) {
	return f.slates[sport], nil
}

type fakeLock struct {
	held     bool
	err      error
	acquired int
	released int
}

func (f *fakeLock) TryLock(_ context.Context, _ model.SportType) (func(), bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held {
		return nil, false, nil
	}
	f.acquired++
	return func() { f.released++ }, true, nil
}

func game(id string, sport model.SportType, status model.GameStatus) model.GameRecord {
	return model.GameRecord{
		GameID:      id,
		SportType:   sport,
		HomeTeam:    "Casa",
		AwayTeam:    "Fora",
		Status:      status,
		ScheduledAt: time.Now().UTC(),
	}
}

func newOrch(st Store, ad provider.Adapter) *Orchestrator {
	return New(zap.NewNop(), st, ad, 0)
}

func TestGetLiveScoresInvalidSport(t *testing.T) {
	o := newOrch(newFakeStore(), &fakeAdapter{})
	_, err := o.GetLiveScores(context.Background(), model.SportType("cricket"), false)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// Cache abaixo do TTL serve direto do Store, sem tocar no Adapter
func TestGetLiveScoresFreshSkipsAdapter(t *testing.T) {
	st := newFakeStore()
	st.put(game("g1", model.SportSoccer, model.StatusLive), time.Now().Add(-299*time.Second))
	ad := &fakeAdapter{}
	o := newOrch(st, ad)

	var hits, misses int
	o.OnCacheHit = func() { hits++ }
	o.OnCacheMiss = func() { misses++ }

	res, err := o.GetLiveScores(context.Background(), model.SportSoccer, false)
	require.NoError(t, err)
	assert.Zero(t, ad.liveCalls)
	assert.Equal(t, 1, hits)
	assert.Zero(t, misses)
	require.Len(t, res.Live, 1)
	assert.Equal(t, "g1", res.Live[0].GameID)
}

// No limiar (idade == TTL) o cache conta como stale: exatamente um fetch
func TestGetLiveScoresStaleTriggersSingleFetch(t *testing.T) {
	st := newFakeStore()
	st.put(game("g1", model.SportSoccer, model.StatusLive), time.Now().Add(-301*time.Second))
	fresh := game("g1", model.SportSoccer, model.StatusLive)
	fresh.HomeScore = 2
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {fresh},
	}}
	o := newOrch(st, ad)

	var misses int
	o.OnCacheMiss = func() { misses++ }

	res, err := o.GetLiveScores(context.Background(), model.SportSoccer, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.liveCalls)
	assert.Equal(t, 1, misses)
	require.Len(t, res.Live, 1)
	assert.Equal(t, 2, res.Live[0].HomeScore)
	assert.LessOrEqual(t, res.CacheAgeSeconds, 1, "idade deve ser recalculada pós-refresh")
}

// Cache vazio conta como stale
func TestGetLiveScoresEmptyCacheFetches(t *testing.T) {
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportBasketball: {
			game("b1", model.SportBasketball, model.StatusLive),
			game("b2", model.SportBasketball, model.StatusScheduled),
			game("b3", model.SportBasketball, model.StatusFinal),
		},
	}}
	st := newFakeStore()
	o := newOrch(st, ad)

	res, err := o.GetLiveScores(context.Background(), model.SportBasketball, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.liveCalls)
	assert.Equal(t, 3, st.upserts)
	assert.Len(t, res.Live, 1)
	assert.Len(t, res.Upcoming, 1)
	assert.Len(t, res.RecentlyCompleted, 1)
}

// forceRefresh ignora o frescor: fetch mesmo com cache recém-atualizado
func TestGetLiveScoresForcedBypassesTTL(t *testing.T) {
	st := newFakeStore()
	st.put(game("g1", model.SportSoccer, model.StatusLive), time.Now())
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {game("g1", model.SportSoccer, model.StatusLive)},
	}}
	o := newOrch(st, ad)

	_, err := o.GetLiveScores(context.Background(), model.SportSoccer, true)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.liveCalls)
}

// Falha de Store não tem fallback: propaga pro chamador
func TestGetLiveScoresStoreFailurePropagates(t *testing.T) {
	st := newFakeStore()
	st.upsertErr = errors.New("pq: connection refused")
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {game("g1", model.SportSoccer, model.StatusLive)},
	}}
	o := newOrch(st, ad)

	_, err := o.GetLiveScores(context.Background(), model.SportSoccer, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetGameByIDValidation(t *testing.T) {
	o := newOrch(newFakeStore(), &fakeAdapter{})
	_, err := o.GetGameByID(context.Background(), "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestGetGameByIDFreshCacheHit(t *testing.T) {
	st := newFakeStore()
	st.put(game("g1", model.SportSoccer, model.StatusLive), time.Now())
	ad := &fakeAdapter{}
	o := newOrch(st, ad)

	rec, err := o.GetGameByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", rec.GameID)
	assert.Zero(t, ad.byIDCalls)
}

func TestGetGameByIDStaleRefetches(t *testing.T) {
	st := newFakeStore()
	stale := game("g1", model.SportSoccer, model.StatusLive)
	stale.HomeScore = 1
	st.put(stale, time.Now().Add(-10*time.Minute))

	updated := game("g1", model.SportSoccer, model.StatusFinal)
	updated.HomeScore = 3
	ad := &fakeAdapter{single: map[string]model.GameRecord{"g1": updated}}
	o := newOrch(st, ad)

	rec, err := o.GetGameByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, ad.byIDCalls)
	assert.Equal(t, model.StatusFinal, rec.Status)
	assert.Equal(t, 3, rec.HomeScore)
	assert.Equal(t, 1, st.upserts)
}

// Stale cacheado vale mais que erro de provedor
func TestGetGameByIDServesStaleOnAdapterFailure(t *testing.T) {
	st := newFakeStore()
	stale := game("g1", model.SportSoccer, model.StatusLive)
	st.put(stale, time.Now().Add(-10*time.Minute))
	ad := &fakeAdapter{fetchErr: &provider.Error{Op: "fetch game", Err: errors.New("down")}}
	o := newOrch(st, ad)

	rec, err := o.GetGameByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", rec.GameID)
}

func TestGetGameByIDNotFoundAnywhere(t *testing.T) {
	o := newOrch(newFakeStore(), &fakeAdapter{})
	_, err := o.GetGameByID(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrGameNotFound))
}

func TestGetScoresByDateRangeValidation(t *testing.T) {
	o := newOrch(newFakeStore(), &fakeAdapter{})
	now := time.Now()
	var ve *ValidationError

	_, err := o.GetScoresByDateRange(context.Background(), model.SportType("x"), now, now)
	assert.ErrorAs(t, err, &ve)

	_, err = o.GetScoresByDateRange(context.Background(), model.SportSoccer, now, now.Add(-time.Hour))
	assert.ErrorAs(t, err, &ve)

	_, err = o.GetScoresByDateRange(context.Background(), model.SportSoccer, now, now.Add(8*24*time.Hour))
	assert.ErrorAs(t, err, &ve)
}

// Consulta por período nunca dispara o Adapter, mesmo com cache velho
func TestGetScoresByDateRangeIsStoreOnly(t *testing.T) {
	st := newFakeStore()
	old := game("g1", model.SportSoccer, model.StatusFinal)
	st.put(old, time.Now().Add(-2*time.Hour))
	ad := &fakeAdapter{}
	o := newOrch(st, ad)

	recs, err := o.GetScoresByDateRange(context.Background(), model.SportSoccer,
		time.Now().Add(-24*time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Zero(t, ad.liveCalls)
}

func TestRefreshScoresSurfacesAdapterError(t *testing.T) {
	provErr := &provider.Error{Op: "fetch live", StatusCode: 500, Err: errors.New("boom")}
	ad := &fakeAdapter{errs: map[model.SportType]error{model.SportSoccer: provErr}}
	o := newOrch(newFakeStore(), ad)

	_, err := o.RefreshScores(context.Background(), model.SportSoccer)
	var pe *provider.Error
	assert.ErrorAs(t, err, &pe)
}

// Falha em uma modalidade não bloqueia as demais; resultado parcial com zero
func TestRefreshAllScoresIsolatesFailures(t *testing.T) {
	slates := map[model.SportType][]model.GameRecord{}
	for _, sport := range model.TrackedSports {
		slates[sport] = []model.GameRecord{game("g-"+string(sport), sport, model.StatusLive)}
	}
	ad := &fakeAdapter{
		slates: slates,
		errs:   map[model.SportType]error{model.SportBaseball: errors.New("provider down")},
	}
	o := newOrch(newFakeStore(), ad)

	out := o.RefreshAllScores(context.Background())
	require.Len(t, out, len(model.TrackedSports))
	assert.Zero(t, out[model.SportBaseball])
	for _, sport := range model.TrackedSports {
		if sport == model.SportBaseball {
			continue
		}
		assert.Equal(t, 1, out[sport], "%s", sport)
	}
}

func TestCleanupOldScores(t *testing.T) {
	st := newFakeStore()
	st.deleted = 42
	o := newOrch(st, &fakeAdapter{})

	n, err := o.CleanupOldScores(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, 7, st.deletedArg)

	var ve *ValidationError
	_, err = o.CleanupOldScores(context.Background(), 0)
	assert.ErrorAs(t, err, &ve)
}

func TestGetCacheStatistics(t *testing.T) {
	st := newFakeStore()
	st.put(game("g1", model.SportSoccer, model.StatusLive), time.Now())
	// "other" fica fora do refresh, mas entra no cache via lookup individual
	// e precisa aparecer no sumário
	st.put(game("o1", model.SportOther, model.StatusFinal), time.Now())
	o := newOrch(st, &fakeAdapter{})

	stats, err := o.GetCacheStatistics(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, len(model.AllSports))
	assert.Equal(t, 1, stats[model.SportSoccer].Total)
	assert.Equal(t, 1, stats[model.SportOther].Total)
	assert.Zero(t, stats[model.SportHockey].Total)
}

// Lock ocupado: refresh vira no-op e o leitor segue com o cache corrente
func TestRefreshSkipsWhenLockHeld(t *testing.T) {
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {game("g1", model.SportSoccer, model.StatusLive)},
	}}
	o := newOrch(newFakeStore(), ad)
	o.Lock = &fakeLock{held: true}

	n, err := o.RefreshScores(context.Background(), model.SportSoccer)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, ad.liveCalls)
}

// Lock indisponível não bloqueia o refresh (best-effort)
func TestRefreshProceedsWhenLockErrors(t *testing.T) {
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {game("g1", model.SportSoccer, model.StatusLive)},
	}}
	o := newOrch(newFakeStore(), ad)
	o.Lock = &fakeLock{err: errors.New("redis down")}

	n, err := o.RefreshScores(context.Background(), model.SportSoccer)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRefreshReleasesLock(t *testing.T) {
	lock := &fakeLock{}
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {game("g1", model.SportSoccer, model.StatusLive)},
	}}
	o := newOrch(newFakeStore(), ad)
	o.Lock = lock

	_, err := o.RefreshScores(context.Background(), model.SportSoccer)
	require.NoError(t, err)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

func TestUpsertNotifiesFeed(t *testing.T) {
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportSoccer: {
			game("g1", model.SportSoccer, model.StatusLive),
			game("g2", model.SportSoccer, model.StatusFinal),
		},
	}}
	o := newOrch(newFakeStore(), ad)

	var published []string
	o.OnAfterUpsert = func(rec model.GameRecord) { published = append(published, rec.GameID) }

	n, err := o.RefreshScores(context.Background(), model.SportSoccer)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"g1", "g2"}, published)
}

// Cenário ponta a ponta: primeira leitura num cache vazio busca, grava e serve
func TestFirstReadOnEmptyCache(t *testing.T) {
	ad := &fakeAdapter{slates: map[model.SportType][]model.GameRecord{
		model.SportHockey: {
			game("h1", model.SportHockey, model.StatusLive),
			game("h2", model.SportHockey, model.StatusScheduled),
		},
	}}
	st := newFakeStore()
	o := newOrch(st, ad)

	res, err := o.GetLiveScores(context.Background(), model.SportHockey, false)
	require.NoError(t, err)
	assert.Len(t, res.Live, 1)
	assert.Len(t, res.Upcoming, 1)
	assert.False(t, res.LastUpdate.IsZero())

	// segunda leitura imediata é hit: nada de novo fetch
	_, err = o.GetLiveScores(context.Background(), model.SportHockey, false)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.liveCalls)
}
