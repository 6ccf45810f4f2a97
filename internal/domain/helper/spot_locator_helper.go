package helper

import (
	"context"
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
)

// DefaultRadiusKm 検索半径の既定値（km）
const DefaultRadiusKm = 1.0

// SpotLocatorHelper 座標から最寄りの観光地を特定するヘルパー
type SpotLocatorHelper struct {
	spotsRepo repository.TouristSpotsRepository
}

// NewSpotLocatorHelper 新しいSpotLocatorHelperインスタンスを作成する
func NewSpotLocatorHelper(spotsRepo repository.TouristSpotsRepository) *SpotLocatorHelper {
	return &SpotLocatorHelper{
		spotsRepo: spotsRepo,
	}
}

// ValidateCoordinate 緯度経度と検索半径の範囲をチェックする
func ValidateCoordinate(lat, lng float64, radiusKm *float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("緯度は-90から90の範囲で指定してください: %f", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("経度は-180から180の範囲で指定してください: %f", lng)
	}
	if radiusKm != nil && *radiusKm <= 0 {
		return fmt.Errorf("検索半径は正の値で指定してください: %f", *radiusKm)
	}
	return nil
}

// FindNearestSpot 指定座標に最も近い観光地を見つける
// まず半径radiusKm以内を検索し、1件もなければ半径に関係なく最も近い1件に
// フォールバックする。カタログが空の場合のみ model.ErrSpotNotFound を返す
func (h *SpotLocatorHelper) FindNearestSpot(ctx context.Context, lat, lng float64, radiusKm *float64) (*model.TouristSpot, error) {
	if err := ValidateCoordinate(lat, lng, radiusKm); err != nil {
		return nil, err
	}

	searchRadius := DefaultRadiusKm
	if radiusKm != nil {
		searchRadius = *radiusKm
	}

	// 1. 半径内の観光地を検索（距離の近い順）
	nearbySpots, err := h.spotsRepo.FindWithinRadius(ctx, lat, lng, searchRadius)
	if err != nil {
		return nil, fmt.Errorf("観光地の検索に失敗: %w", err)
	}

	if len(nearbySpots) > 0 {
		log.Printf("📍 半径%.1fkm内に観光地%d件を発見", searchRadius, len(nearbySpots))
		return &nearbySpots[0], nil
	}

	// 2. 半径内に1件もなければ、最も近い観光地1件にフォールバック
	nearestSpots, err := h.spotsRepo.FindNearest(ctx, lat, lng, 1)
	if err != nil {
		return nil, fmt.Errorf("最寄り観光地の検索に失敗: %w", err)
	}

	if len(nearestSpots) == 0 {
		return nil, model.ErrSpotNotFound
	}

	nearest := nearestSpots[0]
	distanceKm := DistanceKm(lat, lng, nearest.Latitude, nearest.Longitude)
	log.Printf("📍 最寄りの観光地: %s (距離: %.2fkm)", nearest.Name, distanceKm)

	return &nearest, nil
}

// DistanceKm 2点間の大円距離をkm単位で計算する
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	meters := geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
	return meters / 1000
}
