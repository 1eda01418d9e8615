package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

// Source é o Adapter entregue ao orquestrador: tenta o provedor real e, em
// qualquer falha (rede, timeout, quota, plano), substitui de forma
// transparente pelos dados sintéticos. Consumidores não distinguem a origem
// pela interface, só pela plausibilidade do conteúdo — é isso que mantém a
// plataforma demoável sem assinatura de dados paga.
//
// O modo (real habilitado ou não) é fixado na construção; não há flag global
// lida em tempo de chamada.
type Source struct {
	live    Adapter // nil ou desabilitado => sempre sintético
	mock    Adapter
	enabled bool
	log     *zap.Logger

	OnFallback func() // métrica: fetches que caíram no sintético
}

func NewSource(live Adapter, mock Adapter, enabled bool, log *zap.Logger) *Source {
	return &Source{live: live, mock: mock, enabled: enabled, log: log}
}

func (s *Source) liveEnabled() bool { return s.enabled && s.live != nil }

func (s *Source) fellBack() {
	if s.OnFallback != nil {
		s.OnFallback()
	}
}

// FetchLive nunca propaga falha do provedor: o caminho de leitura degrada
// para sintético, não para erro
func (s *Source) FetchLive(ctx context.Context, sport model.SportType, date time.Time) ([]model.GameRecord, error) {
	if s.liveEnabled() {
		recs, err := s.live.FetchLive(ctx, sport, date)
		if err == nil {
			return recs, nil
		}
		s.log.Warn("live provider failed, serving synthetic slate",
			zap.String("sport", string(sport)), zap.Error(err))
		s.fellBack()
	}
	return s.mock.FetchLive(ctx, sport, date)
}

// FetchByID repassa ErrGameNotFound do provedor real; outras falhas caem no
// gerador sintético (que também pode não conhecer o ID)
func (s *Source) FetchByID(ctx context.Context, gameID string) (model.GameRecord, error) {
	if s.liveEnabled() {
		rec, err := s.live.FetchByID(ctx, gameID)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, ErrGameNotFound) {
			return model.GameRecord{}, err
		}
		s.log.Warn("live provider failed on single game, trying synthetic",
			zap.String("game_id", gameID), zap.Error(err))
		s.fellBack()
	}
	return s.mock.FetchByID(ctx, gameID)
}

// FetchUpcoming segue a mesma política de fallback do FetchLive
func (s *Source) FetchUpcoming(ctx context.Context, sport model.SportType, days int) ([]model.GameRecord, error) {
	if s.liveEnabled() {
		recs, err := s.live.FetchUpcoming(ctx, sport, days)
		if err == nil {
			return recs, nil
		}
		s.log.Warn("live provider failed on upcoming, serving synthetic slate",
			zap.String("sport", string(sport)), zap.Error(err))
		s.fellBack()
	}
	return s.mock.FetchUpcoming(ctx, sport, days)
}
