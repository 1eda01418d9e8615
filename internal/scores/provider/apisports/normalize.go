package apisports

import "github.com/radieske/social-bets-platform/internal/scores/model"

// statusTable mapeia cada código bruto do provedor para exatamente um status
// canônico. Tabela fechada: código desconhecido cai em scheduled (fail-open,
// nunca derruba o fetch por vocabulário novo do provedor).
//
// Regras:
//   - qualquer variante de "em andamento" (tempos, quartos, períodos,
//     prorrogação, pênaltis em disputa) => live
//   - qualquer variante de "encerrado" (inclusive W.O., decisão técnica,
//     pênaltis decididos) => final
//   - suspenso/interrompido => postponed
//   - cancelado/abandonado => cancelled
var statusTable = map[string]model.GameStatus{
	// Agendados
	"NS":  model.StatusScheduled, // not started
	"TBD": model.StatusScheduled, // horário a definir

	// Em andamento — futebol
	"1H":   model.StatusLive, // primeiro tempo
	"2H":   model.StatusLive, // segundo tempo
	"ET":   model.StatusLive, // prorrogação
	"BT":   model.StatusLive, // intervalo da prorrogação
	"P":    model.StatusLive, // disputa de pênaltis
	"LIVE": model.StatusLive, // genérico do provedor

	// Em andamento — quadra/rinque/campo (quartos, períodos, innings)
	"Q1":  model.StatusLive,
	"Q2":  model.StatusLive,
	"Q3":  model.StatusLive,
	"Q4":  model.StatusLive,
	"OT":  model.StatusLive, // overtime
	"SO":  model.StatusLive, // shootout
	"P1":  model.StatusLive,
	"P2":  model.StatusLive,
	"P3":  model.StatusLive,
	"IN1": model.StatusLive,
	"IN2": model.StatusLive,
	"IN3": model.StatusLive,
	"IN4": model.StatusLive,
	"IN5": model.StatusLive,
	"IN6": model.StatusLive,
	"IN7": model.StatusLive,
	"IN8": model.StatusLive,
	"IN9": model.StatusLive,

	// Intervalo
	"HT":   model.StatusHalftime,
	"HALF": model.StatusHalftime,

	// Encerrados
	"FT":  model.StatusFinal, // tempo regulamentar
	"AET": model.StatusFinal, // após prorrogação
	"PEN": model.StatusFinal, // decidido nos pênaltis
	"AOT": model.StatusFinal, // após overtime
	"AWD": model.StatusFinal, // decisão técnica (pontos atribuídos)
	"WO":  model.StatusFinal, // walkover

	// Suspensos/interrompidos
	"SUSP": model.StatusPostponed,
	"INT":  model.StatusPostponed,
	"PST":  model.StatusPostponed, // adiado

	// Cancelados
	"CANC": model.StatusCancelled,
	"ABD":  model.StatusCancelled, // abandonado
}

// NormalizeStatus converte o código bruto do provedor no status canônico.
// Código não mapeado vira scheduled.
func NormalizeStatus(raw string) model.GameStatus {
	if st, ok := statusTable[raw]; ok {
		return st
	}
	return model.StatusScheduled
}

// RawStatuses retorna todos os códigos brutos conhecidos (usado em testes e
// pelo sports-feed-simulator para emitir vocabulário realista)
func RawStatuses() []string {
	out := make([]string, 0, len(statusTable))
	for raw := range statusTable {
		out = append(out, raw)
	}
	return out
}
