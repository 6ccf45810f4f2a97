package model

import "errors"

// 観光地情報の解決で呼び出し側に公開されるエラー
// キャッシュ層の一時的な障害はここには現れず、各層のミスとして吸収される
var (
	// ErrSpotNotFound カタログに該当する観光地が存在しない
	ErrSpotNotFound = errors.New("該当する観光地が見つかりません")

	// ErrContentNotFound どの層からも観光地情報を取得できなかった
	ErrContentNotFound = errors.New("観光地情報が見つかりません")
)

// CacheStatistics キャッシュ全体の統計情報
type CacheStatistics struct {
	Redis             RedisCacheStats    `json:"redis"`
	Postgres          PostgresCacheStats `json:"postgres"`
	TotalTouristSpots int64              `json:"total_tourist_spots"`
}

// RedisCacheStats Redisキャッシュのプレフィックス別キー数
type RedisCacheStats struct {
	VisitJejuCacheCount int64 `json:"visitjeju_cache_count"`
	LocationCacheCount  int64 `json:"location_cache_count"`
	TotalCacheCount     int64 `json:"total_cache_count"`
}

// PostgresCacheStats Postgresキャッシュの統計情報
type PostgresCacheStats struct {
	TotalCount   int64 `json:"total_count"`
	ValidCount   int64 `json:"valid_count"`
	ExpiredCount int64 `json:"expired_count"`
}

// CacheCleanupResult キャッシュ整理の実行結果
type CacheCleanupResult struct {
	ExpiredCachesCleaned int64 `json:"expired_caches_cleaned"`
	OldCachesCleaned     int64 `json:"old_caches_cleaned"`
	TotalCleaned         int64 `json:"total_cleaned"`
}
