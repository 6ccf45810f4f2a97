package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"Dormung-App/internal/domain/helper"
	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
)

// TouristSpotLocation 位置検索用の軽量な観光地情報
type TouristSpotLocation struct {
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Category   string  `json:"category"`
	DistanceKm float64 `json:"distance_km"`
}

// TouristSpotUseCase 観光地カタログの検索機能を提供する
type TouristSpotUseCase interface {
	// FindNearbySpots 指定座標から半径内の観光地を距離付きで取得する
	FindNearbySpots(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]TouristSpotLocation, error)

	// SearchSpots 名前または住所にキーワードを含む観光地を検索する
	SearchSpots(ctx context.Context, keyword string, limit int) ([]TouristSpotLocation, error)

	// GetSpotDetail 外部コンテンツIDでカタログの詳細を取得する
	GetSpotDetail(ctx context.Context, externalID string) (*model.TouristSpot, error)

	// SearchCachedInfo キャッシュ済みの観光地情報をキーワードで検索する
	SearchCachedInfo(ctx context.Context, keyword string) ([]model.TouristInfo, error)
}

type touristSpotUseCaseImpl struct {
	spotsRepo repository.TouristSpotsRepository
	cacheRepo repository.VisitJejuCacheRepository
}

// NewTouristSpotUseCase 新しいTouristSpotUseCaseインスタンスを作成する
func NewTouristSpotUseCase(
	spotsRepo repository.TouristSpotsRepository,
	cacheRepo repository.VisitJejuCacheRepository,
) TouristSpotUseCase {
	return &touristSpotUseCaseImpl{
		spotsRepo: spotsRepo,
		cacheRepo: cacheRepo,
	}
}

func (u *touristSpotUseCaseImpl) FindNearbySpots(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]TouristSpotLocation, error) {
	if err := helper.ValidateCoordinate(lat, lng, &radiusKm); err != nil {
		return nil, err
	}

	spots, err := u.spotsRepo.FindWithinRadius(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("周辺観光地の検索に失敗: %w", err)
	}

	if limit > 0 && len(spots) > limit {
		spots = spots[:limit]
	}

	log.Printf("📍 周辺観光地検索: (%f, %f) 半径%.1fkm -> %d件", lat, lng, radiusKm, len(spots))
	return toLocations(spots, lat, lng), nil
}

func (u *touristSpotUseCaseImpl) SearchSpots(ctx context.Context, keyword string, limit int) ([]TouristSpotLocation, error) {
	spots, err := u.spotsRepo.SearchByKeyword(ctx, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("観光地の検索に失敗: %w", err)
	}

	log.Printf("🔍 観光地キーワード検索: %s -> %d件", keyword, len(spots))

	// キーワード検索では距離の基準点がないため距離は0のまま
	results := make([]TouristSpotLocation, 0, len(spots))
	for _, spot := range spots {
		results = append(results, toLocation(spot, 0))
	}
	return results, nil
}

func (u *touristSpotUseCaseImpl) GetSpotDetail(ctx context.Context, externalID string) (*model.TouristSpot, error) {
	spot, err := u.spotsRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return spot, nil
}

func (u *touristSpotUseCaseImpl) SearchCachedInfo(ctx context.Context, keyword string) ([]model.TouristInfo, error) {
	entries, err := u.cacheRepo.SearchByKeyword(ctx, keyword, time.Now())
	if err != nil {
		return nil, fmt.Errorf("キャッシュの検索に失敗: %w", err)
	}

	results := make([]model.TouristInfo, 0, len(entries))
	for i := range entries {
		info := entries[i].ToTouristInfo()
		info.Source = model.SourcePostgres
		results = append(results, *info)
	}
	return results, nil
}

func toLocations(spots []model.TouristSpot, lat, lng float64) []TouristSpotLocation {
	results := make([]TouristSpotLocation, 0, len(spots))
	for _, spot := range spots {
		results = append(results, toLocation(spot, helper.DistanceKm(lat, lng, spot.Latitude, spot.Longitude)))
	}
	return results
}

func toLocation(spot model.TouristSpot, distanceKm float64) TouristSpotLocation {
	return TouristSpotLocation{
		ExternalID: spot.ExternalID,
		Name:       spot.Name,
		Address:    spot.Address,
		Latitude:   spot.Latitude,
		Longitude:  spot.Longitude,
		Category:   spot.Category,
		DistanceKm: distanceKm,
	}
}
