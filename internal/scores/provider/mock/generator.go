package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/radieske/social-bets-platform/internal/scores/model"
	"github.com/radieske/social-bets-platform/internal/scores/provider"
)

// Catálogo fixo de times por modalidade para geração de jogos simulados
var teamCatalog = map[model.SportType][]string{
	model.SportSoccer: {
		"Flamengo", "Palmeiras", "Grêmio", "Internacional",
		"Corinthians", "Santos", "São Paulo", "Vasco",
	},
	model.SportFootball: {
		"Steel City Titans", "Bayshore Hawks", "Redwood Chargers",
		"Northgate Rams", "Lakeland Bisons", "Ironport Raiders",
	},
	model.SportBasketball: {
		"Harbor City Comets", "Westside Sentinels", "Crown Heights Royals",
		"Midtown Pioneers", "Eastvale Thunder", "Southport Stags",
	},
	model.SportBaseball: {
		"River Bend Otters", "Old Town Captains", "Sunset Park Gulls",
		"Cedar Falls Miners", "Brookfield Bears", "Palm Grove Pelicans",
	},
	model.SportHockey: {
		"Glacier Bay Wolves", "North Ridge Lynx", "Frostline Admirals",
		"Silver Lake Storm", "Iron Hills Yetis", "Polar Point Orcas",
	},
	model.SportOther: {
		"Time Azul", "Time Vermelho", "Time Verde", "Time Amarelo",
	},
}

var venueCatalog = []string{
	"Arena Central", "Estádio Municipal", "Metropolitan Dome",
	"Riverside Park", "Grand Coliseum", "Union Field",
}

// Generator produz placares sintéticos com o mesmo formato do provedor real.
// Para um mesmo par (modalidade, data) a slate gerada é sempre a mesma, o que
// mantém testes e demos determinísticos.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// FetchLive gera uma slate de 3 a 5 jogos plausíveis para a modalidade/data.
// Todos os campos são preenchidos ou explicitamente nulos (schema completo);
// nenhum consumidor precisa de null-check além dos opcionais documentados.
func (g *Generator) FetchLive(_ context.Context, sport model.SportType, date time.Time) ([]model.GameRecord, error) {
	return g.slate(sport, date), nil
}

// FetchByID regenera as slates do dia de todas as modalidades rastreadas e
// procura o jogo; os IDs sintéticos são deriváveis, então o mesmo ID volta a
// existir em chamadas subsequentes
func (g *Generator) FetchByID(_ context.Context, gameID string) (model.GameRecord, error) {
	today := time.Now().UTC()
	for _, sport := range model.TrackedSports {
		for _, rec := range g.slate(sport, today) {
			if rec.GameID == gameID {
				return rec, nil
			}
		}
	}
	return model.GameRecord{}, provider.ErrGameNotFound
}

// FetchUpcoming gera jogos agendados para os próximos `days` dias,
// placar zerado e status scheduled
func (g *Generator) FetchUpcoming(_ context.Context, sport model.SportType, days int) ([]model.GameRecord, error) {
	var out []model.GameRecord
	now := time.Now().UTC()
	for d := 1; d <= days; d++ {
		day := now.AddDate(0, 0, d)
		for _, rec := range g.slate(sport, day) {
			rec.Status = model.StatusScheduled
			rec.HomeScore, rec.AwayScore = 0, 0
			rec.StartedAt, rec.CompletedAt = nil, nil
			rec.Period, rec.TimeRemaining = "", ""
			out = append(out, rec)
		}
	}
	return out, nil
}

// slate é o gerador propriamente dito; seed derivada de (modalidade, dia)
func (g *Generator) slate(sport model.SportType, date time.Time) []model.GameRecord {
	day := date.UTC().Truncate(24 * time.Hour)
	rnd := rand.New(rand.NewSource(seed(sport, day)))

	teams := teamCatalog[sport]
	if len(teams) == 0 {
		teams = teamCatalog[model.SportOther]
	}
	// embaralha uma cópia pra formar os confrontos do dia
	shuffled := make([]string, len(teams))
	copy(shuffled, teams)
	rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	n := 3 + rnd.Intn(3) // 3..5 jogos
	if max := len(shuffled) / 2; n > max {
		n = max
	}

	now := time.Now().UTC()
	out := make([]model.GameRecord, 0, n)
	for i := 0; i < n; i++ {
		home, away := shuffled[i*2], shuffled[i*2+1]
		scheduledAt := day.Add(time.Duration(16+i*2) * time.Hour) // jogos ao longo do dia

		rec := model.GameRecord{
			GameID:      fmt.Sprintf("sim-%s-%s-%d", sport, day.Format("20060102"), i+1),
			SportType:   sport,
			HomeTeam:    home,
			AwayTeam:    away,
			Status:      pickStatus(rnd, scheduledAt, now),
			ScheduledAt: scheduledAt,
			Venue:       venueCatalog[rnd.Intn(len(venueCatalog))],
			Metadata:    leagueMetadata(sport, day),
		}

		switch {
		case rec.Status.InProgress():
			rec.HomeScore = rnd.Intn(maxScore(sport))
			rec.AwayScore = rnd.Intn(maxScore(sport))
			if rec.Status == model.StatusHalftime {
				rec.Period = "HT"
			} else {
				rec.Period = livePeriod(sport, rnd)
				rec.TimeRemaining = fmt.Sprintf("%02d:%02d", rnd.Intn(15), rnd.Intn(60))
			}
			started := scheduledAt
			if started.After(now) {
				started = now.Add(-30 * time.Minute)
			}
			rec.StartedAt = &started
		case rec.Status == model.StatusFinal:
			rec.HomeScore = rnd.Intn(maxScore(sport))
			rec.AwayScore = rnd.Intn(maxScore(sport))
			started := scheduledAt
			completed := scheduledAt.Add(2 * time.Hour)
			if completed.After(now) {
				completed = now
			}
			rec.StartedAt = &started
			rec.CompletedAt = &completed
		}

		out = append(out, rec)
	}
	return out
}

// pickStatus sorteia um status plausível; jogos claramente futuros ficam
// scheduled, o resto pende para live pra manter a demo interessante
func pickStatus(rnd *rand.Rand, scheduledAt, now time.Time) model.GameStatus {
	if scheduledAt.After(now.Add(2 * time.Hour)) {
		return model.StatusScheduled
	}
	switch p := rnd.Intn(100); {
	case p < 45:
		return model.StatusLive
	case p < 55:
		return model.StatusHalftime
	case p < 85:
		return model.StatusFinal
	case p < 90:
		return model.StatusPostponed
	case p < 93:
		return model.StatusCancelled
	default:
		return model.StatusScheduled
	}
}

func maxScore(sport model.SportType) int {
	switch sport {
	case model.SportBasketball:
		return 130
	case model.SportFootball:
		return 45
	case model.SportBaseball:
		return 12
	case model.SportHockey:
		return 7
	default:
		return 5
	}
}

func livePeriod(sport model.SportType, rnd *rand.Rand) string {
	switch sport {
	case model.SportBasketball, model.SportFootball:
		return fmt.Sprintf("Q%d", 1+rnd.Intn(4))
	case model.SportHockey:
		return fmt.Sprintf("P%d", 1+rnd.Intn(3))
	case model.SportBaseball:
		return fmt.Sprintf("IN%d", 1+rnd.Intn(9))
	default:
		if rnd.Intn(2) == 0 {
			return "1H"
		}
		return "2H"
	}
}

func leagueMetadata(sport model.SportType, day time.Time) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"league":    fmt.Sprintf("Liga Social de %s", sport),
		"season":    day.Year(),
		"synthetic": true,
	})
	return b
}

func seed(sport model.SportType, day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sport))
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64())
}
