package repository

import (
	"context"

	"Dormung-App/internal/domain/model"
)

// RedisCacheRepository Redisの高速キャッシュを管理する
// キャッシュは最適化であって信頼できる情報源ではないため、全操作はベストエフォート:
// エラーはログに記録したうえでミス（またはno-op）として扱い、呼び出し側には伝播しない
type RedisCacheRepository interface {
	// GetByExternalID 外部IDでキャッシュを取得する。ミスまたは障害時は ok=false
	GetByExternalID(ctx context.Context, externalID string) (info *model.TouristInfo, ok bool)

	// SaveByExternalID 外部IDをキーにキャッシュを24時間TTLで保存する
	SaveByExternalID(ctx context.Context, externalID string, info *model.TouristInfo)

	// GetExternalIDByLocation 座標キーから外部IDを取得する。ミスまたは障害時は ok=false
	GetExternalIDByLocation(ctx context.Context, lat, lng float64) (externalID string, ok bool)

	// SaveLocationMapping 座標→外部IDのマッピングを24時間TTLで保存する
	SaveLocationMapping(ctx context.Context, lat, lng float64, externalID string)

	// DeleteByExternalID 外部IDのキャッシュを削除する
	DeleteByExternalID(ctx context.Context, externalID string)

	// DeleteAll 両方のキー空間のキャッシュをすべて削除し、削除件数を返す
	DeleteAll(ctx context.Context) int64

	// Stats プレフィックス別のキー数を取得する
	Stats(ctx context.Context) *model.RedisCacheStats
}
