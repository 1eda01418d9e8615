package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis abre o cliente compartilhado pelo pipeline de placares:
// Pub/Sub de broadcast pro hub WS e lock de dedup de refresh. O pool é
// dimensionado pra poucas operações curtas (SETNX/PUBLISH), não pra cache
// de leitura quente; a assinatura Pub/Sub usa conexão dedicada fora do pool.
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     8,
		MinIdleConns: 1,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
