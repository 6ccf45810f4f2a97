package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient Redis接続クライアントのラッパー
type RedisClient struct {
	Client *redis.Client
}

// NewRedisClient 環境変数から新しいRedisクライアントを作成
// REDIS_DB の解析に失敗した場合は 0 にフォールバックする
func NewRedisClient() (*RedisClient, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	password := os.Getenv("REDIS_PASSWORD")

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       db,
	})

	// 接続テスト
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	return &RedisClient{
		Client: client,
	}, nil
}

// Close Redis接続を閉じる
func (rc *RedisClient) Close() error {
	if rc.Client != nil {
		return rc.Client.Close()
	}
	return nil
}

// HealthCheck Redis接続のヘルスチェック
func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	if rc.Client == nil {
		return fmt.Errorf("Redisクライアントが初期化されていません")
	}
	return rc.Client.Ping(ctx).Err()
}
