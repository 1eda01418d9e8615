package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/radieske/social-bets-platform/internal/scores/model"
)

// lockTTL cobre o pior caso de um fetch (timeout do provedor + upserts);
// expirado, o lock se solta sozinho mesmo se o dono morreu
const lockTTL = 30 * time.Second

// RedisRefreshLock implementa RefreshLock com SETNX por modalidade.
// O token do dono evita que um release atrasado solte o lock de outro fetch.
type RedisRefreshLock struct {
	R *redis.Client
}

func NewRedisRefreshLock(r *redis.Client) *RedisRefreshLock {
	return &RedisRefreshLock{R: r}
}

func lockKey(sport model.SportType) string {
	return "scores:refresh-lock:" + string(sport)
}

// releaseScript só apaga a chave se o token ainda for o nosso
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

func (l *RedisRefreshLock) TryLock(ctx context.Context, sport model.SportType) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, lockKey(sport), token, lockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, l.R, []string{lockKey(sport)}, token).Result()
	}
	return release, true, nil
}
