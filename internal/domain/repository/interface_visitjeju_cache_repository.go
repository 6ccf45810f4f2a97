package repository

import (
	"context"
	"time"

	"Dormung-App/internal/domain/model"
)

// VisitJejuCacheRepository Postgresのバックアップキャッシュを管理する
type VisitJejuCacheRepository interface {
	// FindValidByExternalID 活性かつ未失効のキャッシュを取得する
	// 非活性・失効済みの行は存在しない場合と同じ扱いで (nil, nil) を返す
	FindValidByExternalID(ctx context.Context, externalID string, now time.Time) (*model.VisitJejuCache, error)

	// Upsert 外部IDをキーにキャッシュを作成または更新する
	// 更新時は cached_at / expires_at を進め、is_active を強制的に true に戻す
	Upsert(ctx context.Context, touristSpotID int64, info *model.TouristInfo) error

	// Deactivate 指定キャッシュを論理削除する
	Deactivate(ctx context.Context, externalID string) error

	// DeleteExpired 失効済みまたは非活性のキャッシュを一括削除し、削除件数を返す
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteOlderThan 指定時刻より前にキャッシュされた行を削除し、削除件数を返す
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Stats キャッシュの統計情報（総数・有効数・失効数）を取得する
	Stats(ctx context.Context, now time.Time) (*model.PostgresCacheStats, error)

	// SearchByKeyword タイトルまたはタグにキーワードを含む有効なキャッシュを検索する
	SearchByKeyword(ctx context.Context, keyword string, now time.Time) ([]model.VisitJejuCache, error)
}
