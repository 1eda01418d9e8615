package apisports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.GameStatus
	}{
		{"NS", model.StatusScheduled},
		{"TBD", model.StatusScheduled},

		{"1H", model.StatusLive},
		{"2H", model.StatusLive},
		{"ET", model.StatusLive},
		{"BT", model.StatusLive},
		{"P", model.StatusLive},
		{"LIVE", model.StatusLive},
		{"Q1", model.StatusLive},
		{"Q4", model.StatusLive},
		{"OT", model.StatusLive},
		{"SO", model.StatusLive},
		{"P3", model.StatusLive},
		{"IN2", model.StatusLive},
		{"IN9", model.StatusLive},

		{"HT", model.StatusHalftime},
		{"HALF", model.StatusHalftime},

		{"FT", model.StatusFinal},
		{"AET", model.StatusFinal},
		{"PEN", model.StatusFinal},
		{"AOT", model.StatusFinal},
		{"AWD", model.StatusFinal},
		{"WO", model.StatusFinal},

		{"SUSP", model.StatusPostponed},
		{"INT", model.StatusPostponed},
		{"PST", model.StatusPostponed},

		{"CANC", model.StatusCancelled},
		{"ABD", model.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

// Totalidade: todo código conhecido normaliza pra um dos seis valores canônicos
func TestNormalizeStatusTotality(t *testing.T) {
	for _, raw := range RawStatuses() {
		st := NormalizeStatus(raw)
		assert.True(t, st.Valid(), "código %q normalizou para valor inválido %q", raw, st)
	}
}

// Código desconhecido nunca explode: vira scheduled
func TestNormalizeStatusUnknownDefaultsToScheduled(t *testing.T) {
	for _, raw := range []string{"", "XYZ", "FINISHED", "half-time", "ns"} {
		assert.Equal(t, model.StatusScheduled, NormalizeStatus(raw))
	}
}
