package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSportTypeValid(t *testing.T) {
	for _, s := range TrackedSports {
		assert.True(t, s.Valid(), "tracked sport %s deve ser válido", s)
	}
	assert.True(t, SportOther.Valid())
	assert.False(t, SportType("cricket").Valid())
	assert.False(t, SportType("").Valid())

	// AllSports = rastreadas + other
	assert.Len(t, AllSports, len(TrackedSports)+1)
	assert.Contains(t, AllSports, SportOther)
}

func TestGameStatusValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid())
	}
	assert.False(t, GameStatus("in_progress").Valid())
	assert.False(t, GameStatus("").Valid())
}

func TestGameStatusInProgress(t *testing.T) {
	assert.True(t, StatusLive.InProgress())
	assert.True(t, StatusHalftime.InProgress())
	assert.False(t, StatusScheduled.InProgress())
	assert.False(t, StatusFinal.InProgress())
}

func TestCacheStatusAge(t *testing.T) {
	now := time.Now()

	fresh := CacheStatus{LastUpdated: now.Add(-30 * time.Second)}
	assert.InDelta(t, 30, fresh.Age(now).Seconds(), 1)

	// cache vazio conta como infinitamente velho
	empty := CacheStatus{}
	assert.Greater(t, empty.Age(now), 100*365*24*time.Hour)
}
