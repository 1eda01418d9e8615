package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider/mock"
	"github.com/radieske/social-bets-platform/internal/shared/config"
	"github.com/radieske/social-bets-platform/internal/shared/logger"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Métricas Prometheus para monitoramento do simulador
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_sim_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	gamesServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_sim_games_served_total",
		Help: "Jogos servidos via HTTP",
	})
)

// envelope replica o formato do gateway real (estilo api-sports):
// os consumidores não distinguem simulador de provedor de verdade
type envelope struct {
	Errors   []string  `json:"errors"`
	Response []rawGame `json:"response"`
}

type rawGame struct {
	ID     string    `json:"id"`
	Sport  string    `json:"sport"`
	Date   string    `json:"date"`
	Status rawStatus `json:"status"`
	Teams  struct {
		Home rawTeam `json:"home"`
		Away rawTeam `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home int `json:"home"`
		Away int `json:"away"`
	} `json:"scores"`
	Venue  string          `json:"venue"`
	League json.RawMessage `json:"league"`
}

type rawStatus struct {
	Short string `json:"short"`
	Long  string `json:"long"`
	Timer string `json:"timer"`
}

type rawTeam struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// toRaw desnormaliza um registro canônico pro vocabulário bruto do provedor
func toRaw(rec model.GameRecord) rawGame {
	g := rawGame{
		ID:     rec.GameID,
		Sport:  string(rec.SportType),
		Date:   rec.ScheduledAt.Format(time.RFC3339),
		Venue:  rec.Venue,
		League: rec.Metadata,
	}
	g.Teams.Home = rawTeam{Name: rec.HomeTeam, Logo: rec.HomeTeamLogo}
	g.Teams.Away = rawTeam{Name: rec.AwayTeam, Logo: rec.AwayTeamLogo}
	g.Scores.Home = rec.HomeScore
	g.Scores.Away = rec.AwayScore
	g.Status = rawStatus{Short: rawCode(rec), Long: string(rec.Status), Timer: rec.TimeRemaining}
	return g
}

// rawCode escolhe o código bruto: jogos ao vivo reaproveitam o período
// gerado (Q2, P3, 1H...), que já faz parte do vocabulário do provedor
func rawCode(rec model.GameRecord) string {
	switch rec.Status {
	case model.StatusLive:
		if rec.Period != "" {
			return rec.Period
		}
		return "LIVE"
	case model.StatusHalftime:
		return "HT"
	case model.StatusFinal:
		return "FT"
	case model.StatusPostponed:
		return "SUSP"
	case model.StatusCancelled:
		return "CANC"
	default:
		return "NS"
	}
}

// server monta as respostas a partir do gerador determinístico
type server struct {
	log *zap.Logger
	gen *mock.Generator
}

// gamesHandler atende /v1/games?sport=&date= e /v1/games?id=
func (s *server) gamesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		rec, err := s.gen.FetchByID(r.Context(), id)
		if err != nil {
			writeEnvelope(w, envelope{Errors: []string{}, Response: []rawGame{}})
			return
		}
		gamesServed.Inc()
		writeEnvelope(w, envelope{Errors: []string{}, Response: []rawGame{toRaw(rec)}})
		return
	}

	sport := model.SportType(q.Get("sport"))
	if !sport.Valid() {
		writeEnvelope(w, envelope{Errors: []string{"invalid sport parameter"}})
		return
	}
	date := time.Now().UTC()
	if d := q.Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeEnvelope(w, envelope{Errors: []string{"invalid date parameter"}})
			return
		}
		date = parsed
	}

	recs, _ := s.gen.FetchLive(r.Context(), sport, date)
	out := make([]rawGame, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRaw(rec))
		gamesServed.Inc()
	}
	writeEnvelope(w, envelope{Errors: []string{}, Response: out})
}

// upcomingHandler atende /v1/games/upcoming?sport=&days=
func (s *server) upcomingHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sport := model.SportType(q.Get("sport"))
	if !sport.Valid() {
		writeEnvelope(w, envelope{Errors: []string{"invalid sport parameter"}})
		return
	}
	days := 7
	if v := q.Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	recs, _ := s.gen.FetchUpcoming(r.Context(), sport, days)
	out := make([]rawGame, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRaw(rec))
		gamesServed.Inc()
	}
	writeEnvelope(w, envelope{Errors: []string{}, Response: out})
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(env)
}

// hub mínimo pra empurrar slates ao vivo por WebSocket
type hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: make(map[string]*websocket.Conn), log: log}
}

func (h *hub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.Close()
		}
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, gamesServed)

	s := &server{log: log, gen: mock.NewGenerator()}
	h := newHub(log)

	// Empurra a slate corrente de cada modalidade pros clientes WS a cada 5s
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		ctx := context.Background()
		for range ticker.C {
			for _, sport := range model.TrackedSports {
				recs, _ := s.gen.FetchLive(ctx, sport, time.Now().UTC())
				for _, rec := range recs {
					if rec.Status.InProgress() {
						h.broadcast(toRaw(rec))
					}
				}
			}
		}
	}()

	// ==== MUX PÚBLICO (HTTP principal): feed de jogos + WS
	appMux := http.NewServeMux()
	appMux.HandleFunc("/v1/games", s.gamesHandler)
	appMux.HandleFunc("/v1/games/upcoming", s.upcomingHandler)
	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := uuid.NewString()
		h.add(id, conn)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("feed simulator (metrics) running", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("feed simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/v1/games,/v1/games/upcoming,/ws"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
