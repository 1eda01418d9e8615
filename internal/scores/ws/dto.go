package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// GameID: obrigatório para subscribe/unsubscribe; "*" assina todos os jogos
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	GameID string `json:"gameId"` // requerido em subscribe/unsubscribe
}

// ScoreUpdate representa uma atualização de placar enviada para clientes WebSocket
type ScoreUpdate struct {
	GameID  string      `json:"gameId"`
	Payload interface{} `json:"payload"`
}
