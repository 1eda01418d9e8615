package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

// ErrGameNotFound indica que o provedor não conhece o jogo pedido
var ErrGameNotFound = errors.New("game not found at provider")

// Adapter é a fonte de dados de placares: o provedor externo ou o gerador
// sintético. O orquestrador não distingue as duas implementações.
type Adapter interface {
	// FetchLive retorna o estado corrente dos jogos da modalidade na data
	FetchLive(ctx context.Context, sport model.SportType, date time.Time) ([]model.GameRecord, error)

	// FetchByID retorna um único jogo ou ErrGameNotFound
	FetchByID(ctx context.Context, gameID string) (model.GameRecord, error)

	// FetchUpcoming retorna jogos agendados nos próximos `days` dias,
	// sempre com status scheduled e placar zerado
	FetchUpcoming(ctx context.Context, sport model.SportType, days int) ([]model.GameRecord, error)
}

// Error representa uma falha do provedor externo (rede, timeout, auth,
// restrição de plano). O caminho implícito de refresh mascara esse erro
// com fallback sintético; o refresh explícito o propaga.
type Error struct {
	Op         string // operação que falhou, ex: "fetch live"
	StatusCode int    // status HTTP, 0 quando não aplicável
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
