package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
	"Dormung-App/internal/infrastructure/database"
)

const (
	// visitJejuKeyPrefix 外部ID → 観光地情報JSONのキー空間
	visitJejuKeyPrefix = "visitjeju:"

	// locationKeyPrefix 座標 → 外部IDのキー空間
	locationKeyPrefix = "location:"

	// scanBatchSize SCANの1回あたりの取得件数
	scanBatchSize = 100
)

// RedisVisitJejuCacheRepository Redisの高速キャッシュを管理する
// 2つのキー空間（visitjeju: と location:）は互いに独立しており、参照整合性は
// 保証しない。どちらも24時間TTLで自己修復するため、ズレは許容する
type RedisVisitJejuCacheRepository struct {
	client *redis.Client
}

// NewRedisVisitJejuCacheRepository 新しいRedisVisitJejuCacheRepositoryを作成する
func NewRedisVisitJejuCacheRepository(client *database.RedisClient) repository.RedisCacheRepository {
	return &RedisVisitJejuCacheRepository{
		client: client.Client,
	}
}

// cacheKey 外部IDキャッシュのキーを組み立てる
func cacheKey(externalID string) string {
	return visitJejuKeyPrefix + externalID
}

// locationKey 座標キャッシュのキーを組み立てる（小数点以下6桁で丸める）
func locationKey(lat, lng float64) string {
	return fmt.Sprintf("%s%.6f:%.6f", locationKeyPrefix, lat, lng)
}

func (r *RedisVisitJejuCacheRepository) GetByExternalID(ctx context.Context, externalID string) (*model.TouristInfo, bool) {
	data, err := r.client.Get(ctx, cacheKey(externalID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Redisキャッシュの読み取りエラー: %s - %v", externalID, err)
		}
		return nil, false
	}

	var info model.TouristInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		log.Printf("⚠️ Redisキャッシュのデシリアライズエラー: %s - %v", externalID, err)
		return nil, false
	}

	return &info, true
}

func (r *RedisVisitJejuCacheRepository) SaveByExternalID(ctx context.Context, externalID string, info *model.TouristInfo) {
	// SourceとResponseTimeは呼び出しスコープの情報なので保存しない
	stored := *info
	stored.Source = ""
	stored.ResponseTime = 0

	data, err := json.Marshal(&stored)
	if err != nil {
		log.Printf("⚠️ Redisキャッシュのシリアライズエラー: %s - %v", externalID, err)
		return
	}

	if err := r.client.Set(ctx, cacheKey(externalID), data, model.CacheExpiry).Err(); err != nil {
		log.Printf("⚠️ Redisキャッシュの保存エラー: %s - %v", externalID, err)
		return
	}

	log.Printf("💾 Redisキャッシュ保存: %s (TTL: 24時間)", externalID)
}

func (r *RedisVisitJejuCacheRepository) GetExternalIDByLocation(ctx context.Context, lat, lng float64) (string, bool) {
	externalID, err := r.client.Get(ctx, locationKey(lat, lng)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ 位置キャッシュの読み取りエラー: (%f, %f) - %v", lat, lng, err)
		}
		return "", false
	}
	return externalID, true
}

func (r *RedisVisitJejuCacheRepository) SaveLocationMapping(ctx context.Context, lat, lng float64, externalID string) {
	if err := r.client.Set(ctx, locationKey(lat, lng), externalID, model.CacheExpiry).Err(); err != nil {
		log.Printf("⚠️ 位置マッピングの保存エラー: (%f, %f) - %v", lat, lng, err)
		return
	}
	log.Printf("💾 位置マッピング保存: (%.6f, %.6f) -> %s", lat, lng, externalID)
}

func (r *RedisVisitJejuCacheRepository) DeleteByExternalID(ctx context.Context, externalID string) {
	if err := r.client.Del(ctx, cacheKey(externalID)).Err(); err != nil {
		log.Printf("⚠️ Redisキャッシュの削除エラー: %s - %v", externalID, err)
	}
}

func (r *RedisVisitJejuCacheRepository) DeleteAll(ctx context.Context) int64 {
	return r.deleteByPrefix(ctx, visitJejuKeyPrefix) + r.deleteByPrefix(ctx, locationKeyPrefix)
}

func (r *RedisVisitJejuCacheRepository) Stats(ctx context.Context) *model.RedisCacheStats {
	visitJejuCount := r.countByPrefix(ctx, visitJejuKeyPrefix)
	locationCount := r.countByPrefix(ctx, locationKeyPrefix)

	return &model.RedisCacheStats{
		VisitJejuCacheCount: visitJejuCount,
		LocationCacheCount:  locationCount,
		TotalCacheCount:     visitJejuCount + locationCount,
	}
}

// countByPrefix SCANでプレフィックスに一致するキー数を数える
func (r *RedisVisitJejuCacheRepository) countByPrefix(ctx context.Context, prefix string) int64 {
	var count int64
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			log.Printf("⚠️ Redisキーのスキャンエラー: %s - %v", prefix, err)
			return count
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count
}

// deleteByPrefix SCANで集めたキーをまとめて削除する
func (r *RedisVisitJejuCacheRepository) deleteByPrefix(ctx context.Context, prefix string) int64 {
	var deleted int64
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			log.Printf("⚠️ Redisキーのスキャンエラー: %s - %v", prefix, err)
			return deleted
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				log.Printf("⚠️ Redisキーの削除エラー: %s - %v", prefix, err)
			} else {
				deleted += n
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted
}
