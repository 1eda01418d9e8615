package apisports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
)

// Client consome o gateway de dados esportivos (estilo api-sports).
// Todas as respostas chegam num envelope único: {"errors": [...], "response": [...]}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// New cria o cliente do provedor com timeout fixo por requisição.
// Um timeout vale como qualquer outra falha de fetch: dispara o fallback.
func New(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Envelope e formato por jogo do gateway
type envelope struct {
	Errors   []string  `json:"errors"`
	Response []rawGame `json:"response"`
}

type rawGame struct {
	ID    string `json:"id"`
	Sport string `json:"sport"`
	Date  string `json:"date"` // RFC3339
	Status struct {
		Short string `json:"short"` // código bruto: NS, 1H, HT, FT, ...
		Long  string `json:"long"`
		Timer string `json:"timer"` // tempo restante/decorrido, livre
	} `json:"status"`
	Teams struct {
		Home rawTeam `json:"home"`
		Away rawTeam `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home int `json:"home"`
		Away int `json:"away"`
	} `json:"scores"`
	Venue  string          `json:"venue"`
	League json.RawMessage `json:"league"` // repassado opaco em metadata
}

type rawTeam struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// FetchLive busca o estado corrente dos jogos da modalidade na data
func (c *Client) FetchLive(ctx context.Context, sport model.SportType, date time.Time) ([]model.GameRecord, error) {
	q := url.Values{}
	q.Set("sport", string(sport))
	q.Set("date", date.UTC().Format("2006-01-02"))

	games, err := c.get(ctx, "fetch live", "/v1/games", q)
	if err != nil {
		return nil, err
	}

	out := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		out = append(out, c.toRecord(g, sport))
	}
	return out, nil
}

// FetchByID busca um único jogo pelo identificador do provedor
func (c *Client) FetchByID(ctx context.Context, gameID string) (model.GameRecord, error) {
	q := url.Values{}
	q.Set("id", gameID)

	games, err := c.get(ctx, "fetch by id", "/v1/games", q)
	if err != nil {
		return model.GameRecord{}, err
	}
	if len(games) == 0 {
		return model.GameRecord{}, provider.ErrGameNotFound
	}
	sport := model.SportType(games[0].Sport)
	if !sport.Valid() {
		sport = model.SportOther
	}
	return c.toRecord(games[0], sport), nil
}

// FetchUpcoming busca jogos agendados nos próximos `days` dias.
// O contrato força status scheduled e placar zerado, independente do que o
// provedor responder para jogos futuros.
func (c *Client) FetchUpcoming(ctx context.Context, sport model.SportType, days int) ([]model.GameRecord, error) {
	q := url.Values{}
	q.Set("sport", string(sport))
	q.Set("days", fmt.Sprintf("%d", days))

	games, err := c.get(ctx, "fetch upcoming", "/v1/games/upcoming", q)
	if err != nil {
		return nil, err
	}

	out := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		rec := c.toRecord(g, sport)
		rec.Status = model.StatusScheduled
		rec.HomeScore, rec.AwayScore = 0, 0
		rec.StartedAt, rec.CompletedAt = nil, nil
		rec.Period, rec.TimeRemaining = "", ""
		out = append(out, rec)
	}
	return out, nil
}

// get executa a requisição e valida o envelope.
// Erros de plano/limite vêm no campo "errors" com HTTP 200; tratados como
// falha de provedor do mesmo jeito.
func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]rawGame, error) {
	u := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &provider.Error{Op: op, Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("x-apisports-key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &provider.Error{Op: op, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return nil, &provider.Error{Op: op, StatusCode: res.StatusCode, Err: errors.New("rate limited")}
	}
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &provider.Error{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("unexpected response: %s", body)}
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, &provider.Error{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(env.Errors) > 0 {
		// restrição de plano/quota chega aqui
		return nil, &provider.Error{Op: op, Err: fmt.Errorf("provider errors: %v", env.Errors)}
	}
	return env.Response, nil
}

// toRecord normaliza um jogo bruto para o formato canônico do cache.
// started_at só é preenchido com o jogo em andamento; completed_at só quando
// finalizado.
func (c *Client) toRecord(g rawGame, sport model.SportType) model.GameRecord {
	status := NormalizeStatus(g.Status.Short)

	scheduledAt, err := time.Parse(time.RFC3339, g.Date)
	if err != nil {
		c.log.Warn("unparseable game date, using now",
			zap.String("game_id", g.ID), zap.String("date", g.Date))
		scheduledAt = time.Now().UTC()
	}

	rec := model.GameRecord{
		GameID:       g.ID,
		SportType:    sport,
		HomeTeam:     g.Teams.Home.Name,
		AwayTeam:     g.Teams.Away.Name,
		HomeTeamLogo: g.Teams.Home.Logo,
		AwayTeamLogo: g.Teams.Away.Logo,
		HomeScore:    maxInt(g.Scores.Home, 0),
		AwayScore:    maxInt(g.Scores.Away, 0),
		Status:       status,
		ScheduledAt:  scheduledAt,
		Venue:        g.Venue,
		Metadata:     g.League,
	}

	now := time.Now().UTC()
	if status.InProgress() {
		// período só faz sentido com o jogo rolando; código terminal (FT,
		// CANC) não é período
		rec.Period = g.Status.Short
		rec.TimeRemaining = g.Status.Timer
		started := scheduledAt
		if started.After(now) {
			started = now
		}
		rec.StartedAt = &started
	}
	if status == model.StatusFinal {
		rec.CompletedAt = &now
	}
	return rec
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
