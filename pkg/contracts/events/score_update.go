package events

import "time"

// Evento publicado no tópico "score_updates" a cada upsert de placar.
// Consumido pelos demais serviços da plataforma (liquidação de apostas,
// ticker de placares nos grupos).
type ScoreUpdate struct {
	GameID    string    `json:"game_id"`
	SportType string    `json:"sport_type"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Status    string    `json:"status"` // scheduled | live | halftime | final | postponed | cancelled
	Period    string    `json:"period,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"` // "scores-service"
}
