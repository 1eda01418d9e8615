package refresher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

// Engine é o que o refresher precisa do orquestrador
type Engine interface {
	RefreshAllScores(ctx context.Context) map[model.SportType]int
	CleanupOldScores(ctx context.Context, days int) (int64, error)
}

// Status é o estado operacional exposto pela API pro time de plantão
type Status struct {
	IsRunning   bool      `json:"isRunning"`
	LastUpdate  time.Time `json:"lastUpdate"`
	UpdateCount int64     `json:"updateCount"`
	IntervalMs  int64     `json:"intervalMs"`
}

// Refresher mantém o cache de placares atualizado independente de tráfego de
// leitura: um ticker de refresh-all e outro de varredura de retenção.
// Ciclo de vida explícito Stopped -> Running -> Stopped; Stop garante que
// nenhum timer sobrevive (importante pra shutdown limpo e testes repetidos).
type Refresher struct {
	log             *zap.Logger
	engine          Engine
	interval        time.Duration
	cleanupInterval time.Duration
	retentionDays   int

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	lastUpdate  time.Time
	updateCount int64

	OnCycle func() // métricas: ciclos de refresh completados
}

func New(log *zap.Logger, engine Engine, interval, cleanupInterval time.Duration, retentionDays int) *Refresher {
	return &Refresher{
		log:             log,
		engine:          engine,
		interval:        interval,
		cleanupInterval: cleanupInterval,
		retentionDays:   retentionDays,
	}
}

// Start dispara os loops em background. Idempotente: segunda chamada com o
// refresher rodando só gera um warning.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.log.Warn("refresher already running, ignoring start")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.run(ctx)
	r.log.Info("refresher started",
		zap.Duration("interval", r.interval),
		zap.Duration("cleanup_interval", r.cleanupInterval),
	)
}

// Stop cancela os timers e espera o loop encerrar. Idempotente.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.running = false
	r.mu.Unlock()

	cancel()
	<-done
	r.log.Info("refresher stopped")
}

// ForceUpdate roda um ciclo de refresh imediatamente, fora da cadência
func (r *Refresher) ForceUpdate(ctx context.Context) map[model.SportType]int {
	return r.refreshCycle(ctx)
}

// Status retorna o estado corrente (flag, último ciclo, contagem, intervalo)
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		IsRunning:   r.running,
		LastUpdate:  r.lastUpdate,
		UpdateCount: r.updateCount,
		IntervalMs:  r.interval.Milliseconds(),
	}
}

// run é o loop principal: refresh imediato na partida, depois na cadência
// configurada; cleanup imediato e a cada cleanupInterval. Ciclo que falha é
// logado e o próximo segue normal — sem backoff, o fallback sintético do
// Adapter mantém o sistema saudável mesmo com provedor fora.
func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	refreshTicker := time.NewTicker(r.interval)
	defer refreshTicker.Stop()
	cleanupTicker := time.NewTicker(r.cleanupInterval)
	defer cleanupTicker.Stop()

	r.refreshCycle(ctx)
	r.cleanupCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-refreshTicker.C:
			r.refreshCycle(ctx)
		case <-cleanupTicker.C:
			r.cleanupCycle(ctx)
		}
	}
}

func (r *Refresher) refreshCycle(ctx context.Context) map[model.SportType]int {
	counts := r.engine.RefreshAllScores(ctx)

	total := 0
	for _, n := range counts {
		total += n
	}

	r.mu.Lock()
	r.lastUpdate = time.Now()
	r.updateCount++
	r.mu.Unlock()

	if r.OnCycle != nil {
		r.OnCycle()
	}

	r.log.Info("refresh cycle complete",
		zap.Int("games_updated", total),
		zap.Int("sports", len(counts)),
	)
	return counts
}

func (r *Refresher) cleanupCycle(ctx context.Context) {
	deleted, err := r.engine.CleanupOldScores(ctx, r.retentionDays)
	if err != nil {
		r.log.Warn("cleanup sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		r.log.Info("cleanup sweep complete", zap.Int64("deleted", deleted))
	}
}
