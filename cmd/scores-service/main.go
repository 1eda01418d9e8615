package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/feed"
	"github.com/radieske/social-bets-platform/internal/scores/httpapi"
	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/orchestrator"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
	"github.com/radieske/social-bets-platform/internal/scores/provider/apisports"
	"github.com/radieske/social-bets-platform/internal/scores/provider/mock"
	"github.com/radieske/social-bets-platform/internal/scores/pubsub"
	"github.com/radieske/social-bets-platform/internal/scores/refresher"
	"github.com/radieske/social-bets-platform/internal/scores/store"
	"github.com/radieske/social-bets-platform/internal/scores/ws"
	sharedcache "github.com/radieske/social-bets-platform/internal/shared/cache"
	"github.com/radieske/social-bets-platform/internal/shared/config"
	"github.com/radieske/social-bets-platform/internal/shared/db"
	"github.com/radieske/social-bets-platform/internal/shared/kafka"
	"github.com/radieske/social-bets-platform/internal/shared/logger"
	"github.com/radieske/social-bets-platform/internal/shared/metrics"
	"github.com/radieske/social-bets-platform/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Inicializa dependências: Postgres, Redis e Kafka
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicScoreUpdates)
	defer writer.Close()

	// Métricas Prometheus do pipeline de placares
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "scores_cache_hits_total", Help: "leituras servidas do cache"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "scores_cache_misses_total", Help: "leituras que dispararam fetch"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{Name: "scores_provider_fallbacks_total", Help: "fetches que caíram no gerador sintético"})
	refreshCycles := prometheus.NewCounter(prometheus.CounterOpts{Name: "scores_refresh_cycles_total", Help: "ciclos do refresher em background"})
	upserts := prometheus.NewCounter(prometheus.CounterOpts{Name: "scores_game_upserts_total", Help: "jogos gravados no cache"})
	publishErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scores_publish_errors_total", Help: "erros ao publicar eventos por destino"}, []string{"sink"})
	prometheus.MustRegister(cacheHits, cacheMisses, fallbacks, refreshCycles, upserts, publishErrors)

	// Adapter: provedor real com fallback sintético transparente.
	// O modo (real x mock) é fixado aqui, na construção.
	var live provider.Adapter
	if cfg.SportsAPIEnabled {
		live = apisports.New(cfg.SportsAPIBaseURL, cfg.SportsAPIKey, cfg.SportsAPITimeout, log)
	}
	source := provider.NewSource(live, mock.NewGenerator(), cfg.SportsAPIEnabled, log)
	source.OnFallback = func() { fallbacks.Inc() }
	log.Info("score provider ready", zap.Bool("live_enabled", cfg.SportsAPIEnabled))

	// Publicadores de eventos: Kafka (plataforma) e Redis Pub/Sub (WS)
	publisher := feed.NewKafkaPublisher(writer)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Orquestrador: decisão de frescor + upsert-on-fetch
	orch := orchestrator.New(log, store.NewPostgres(pg), source, cfg.ScoresTTL)
	orch.Lock = orchestrator.NewRedisRefreshLock(redisClient)
	orch.OnCacheHit = func() { cacheHits.Inc() }
	orch.OnCacheMiss = func() { cacheMisses.Inc() }

	// Após cada upsert, propaga o placar pro feed Kafka e pro canal do WS
	orch.OnAfterUpsert = func(rec model.GameRecord) {
		upserts.Inc()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		ev := events.ScoreUpdate{
			GameID:    rec.GameID,
			SportType: string(rec.SportType),
			HomeTeam:  rec.HomeTeam,
			AwayTeam:  rec.AwayTeam,
			HomeScore: rec.HomeScore,
			AwayScore: rec.AwayScore,
			Status:    string(rec.Status),
			Period:    rec.Period,
			UpdatedAt: rec.LastUpdated,
			Source:    cfg.ServiceName,
		}
		if err := publisher.PublishScoreUpdate(ctx, ev); err != nil {
			log.Warn("kafka publish failed", zap.String("game_id", rec.GameID), zap.Error(err))
			publishErrors.WithLabelValues("kafka").Inc()
		}

		msg, _ := json.Marshal(pubsub.WSUpdate{GameID: rec.GameID, Payload: rec})
		if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, msg); err != nil {
			log.Warn("ws broadcast publish failed", zap.Error(err))
			publishErrors.WithLabelValues("redis").Inc()
		}
	}

	// Refresher em background: refresh-all na cadência + varredura de retenção
	ref := refresher.New(log, orch, cfg.RefreshInterval, cfg.CleanupInterval, cfg.RetentionDays)
	ref.OnCycle = func() { refreshCycles.Inc() }
	ref.Start()
	defer ref.Stop()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, hub, cfg.RedisPubSubChannel, log)

	// Servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	// API pública
	api := &httpapi.API{
		Log:       log,
		Scores:    orch,
		Refresher: ref,
		WSHandler: hub.HandleWS,
	}
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		log.Info("scores-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	ref.Stop()
	log.Info("scores-service stopped")
}
