package repository

import (
	"context"

	"Dormung-App/internal/domain/model"
)

// TouristSpotsRepository 観光地カタログへの読み取り専用アクセスを提供する
// カタログの書き込みは外部のインポート処理が担う
type TouristSpotsRepository interface {
	// FindByExternalID 外部コンテンツIDで観光地を取得する
	FindByExternalID(ctx context.Context, externalID string) (*model.TouristSpot, error)

	// FindWithinRadius 指定座標から半径radiusKm以内の観光地を距離の近い順に取得する
	FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]model.TouristSpot, error)

	// FindNearest 指定座標に最も近い観光地をlimit件取得する（半径の制限なし）
	FindNearest(ctx context.Context, lat, lng float64, limit int) ([]model.TouristSpot, error)

	// SearchByKeyword 名前または住所にキーワードを含む観光地を検索する
	SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.TouristSpot, error)

	// Count カタログに登録されている観光地の総数を取得する
	Count(ctx context.Context) (int64, error)
}
