package model

import (
	"encoding/json"
	"time"
)

// SportType identifica a modalidade esportiva de um jogo
type SportType string

const (
	SportFootball   SportType = "football"
	SportBasketball SportType = "basketball"
	SportBaseball   SportType = "baseball"
	SportSoccer     SportType = "soccer"
	SportHockey     SportType = "hockey"
	SportOther      SportType = "other"
)

// TrackedSports é o conjunto fixo de modalidades atualizadas pelo refresher.
// "other" é aceito na validação mas não entra no ciclo de refresh.
var TrackedSports = []SportType{
	SportFootball,
	SportBasketball,
	SportBaseball,
	SportSoccer,
	SportHockey,
}

// AllSports inclui "other": fora do refresh, mas jogos podem entrar no cache
// pelo lookup individual e precisam aparecer nos sumários
var AllSports = []SportType{
	SportFootball,
	SportBasketball,
	SportBaseball,
	SportSoccer,
	SportHockey,
	SportOther,
}

// Valid informa se o valor é uma modalidade reconhecida
func (s SportType) Valid() bool {
	switch s {
	case SportFootball, SportBasketball, SportBaseball, SportSoccer, SportHockey, SportOther:
		return true
	}
	return false
}

// GameStatus é o status canônico de um jogo, independente de provedor
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusHalftime  GameStatus = "halftime"
	StatusFinal     GameStatus = "final"
	StatusPostponed GameStatus = "postponed"
	StatusCancelled GameStatus = "cancelled"
)

// AllStatuses lista todos os status canônicos (ordem estável para sumários)
var AllStatuses = []GameStatus{
	StatusScheduled,
	StatusLive,
	StatusHalftime,
	StatusFinal,
	StatusPostponed,
	StatusCancelled,
}

// Valid informa se o valor é um status canônico
func (s GameStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusLive, StatusHalftime, StatusFinal, StatusPostponed, StatusCancelled:
		return true
	}
	return false
}

// InProgress indica se o jogo está em andamento (bola rolando ou intervalo)
func (s GameStatus) InProgress() bool {
	return s == StatusLive || s == StatusHalftime
}

// GameRecord é o último estado conhecido de um jogo no cache de placares.
// A chave é o GameID atribuído pelo provedor externo.
type GameRecord struct {
	GameID    string    `json:"gameId"`
	SportType SportType `json:"sportType"`

	HomeTeam     string `json:"homeTeam"`
	AwayTeam     string `json:"awayTeam"`
	HomeTeamLogo string `json:"homeTeamLogo,omitempty"`
	AwayTeamLogo string `json:"awayTeamLogo,omitempty"`

	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
	Status    GameStatus `json:"status"`

	Period        string `json:"period,omitempty"`        // ex: "2Q", "HT"
	TimeRemaining string `json:"timeRemaining,omitempty"` // ex: "07:42"

	ScheduledAt time.Time  `json:"scheduledAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Venue string `json:"venue,omitempty"`

	// Metadata é repassado opaco (liga, temporada, extras do provedor)
	Metadata json.RawMessage `json:"metadata,omitempty"`

	LastUpdated time.Time `json:"lastUpdated"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CacheStatus é o sumário derivado por modalidade, usado na decisão de
// frescor do orquestrador. Não é persistido.
type CacheStatus struct {
	SportType   SportType          `json:"sportType"`
	Total       int                `json:"total"`
	ByStatus    map[GameStatus]int `json:"byStatus"`
	LastUpdated time.Time          `json:"lastUpdated"` // zero => cache vazio
}

// Age retorna a idade do cache em relação a now; cache vazio conta como
// infinitamente velho (força fetch)
func (c CacheStatus) Age(now time.Time) time.Duration {
	if c.LastUpdated.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(c.LastUpdated)
}
