package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"Dormung-App/internal/domain/helper"
	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
	"Dormung-App/internal/infrastructure/database"
)

// SupabaseTouristSpotsRepository Supabase (PostgREST) 経由のカタログアクセス
// PostgreSQLへの直接接続が使えない環境向けの代替実装。PostgRESTでは
// ハーバーサイン距離をSQL側で計算できないため、距離計算はクライアント側で行う
type SupabaseTouristSpotsRepository struct {
	client *database.SupabaseClient
}

// NewSupabaseTouristSpotsRepository 新しいSupabaseTouristSpotsRepositoryを作成する
func NewSupabaseTouristSpotsRepository(client *database.SupabaseClient) repository.TouristSpotsRepository {
	return &SupabaseTouristSpotsRepository{
		client: client,
	}
}

func (r *SupabaseTouristSpotsRepository) FindByExternalID(ctx context.Context, externalID string) (*model.TouristSpot, error) {
	var spots []model.TouristSpot
	data, count, err := r.client.GetClient().From("tourist_spots").
		Select("*", "exact", false).
		Eq("external_id", externalID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("観光地データの取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &spots); err != nil {
		return nil, fmt.Errorf("観光地データのJSONアンマーシャル失敗: %w", err)
	}

	if len(spots) == 0 {
		return nil, model.ErrSpotNotFound
	}

	return &spots[0], nil
}

func (r *SupabaseTouristSpotsRepository) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]model.TouristSpot, error) {
	spots, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var nearby []model.TouristSpot
	for _, spot := range spots {
		if helper.DistanceKm(lat, lng, spot.Latitude, spot.Longitude) <= radiusKm {
			nearby = append(nearby, spot)
		}
	}
	sortByDistance(nearby, lat, lng)

	return nearby, nil
}

func (r *SupabaseTouristSpotsRepository) FindNearest(ctx context.Context, lat, lng float64, limit int) ([]model.TouristSpot, error) {
	spots, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	sortByDistance(spots, lat, lng)
	if len(spots) > limit {
		spots = spots[:limit]
	}

	return spots, nil
}

func (r *SupabaseTouristSpotsRepository) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.TouristSpot, error) {
	spots, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(keyword)
	var matched []model.TouristSpot
	for _, spot := range spots {
		if strings.Contains(strings.ToLower(spot.Name), lowered) ||
			strings.Contains(strings.ToLower(spot.Address), lowered) {
			matched = append(matched, spot)
			if len(matched) >= limit {
				break
			}
		}
	}

	return matched, nil
}

func (r *SupabaseTouristSpotsRepository) Count(ctx context.Context) (int64, error) {
	_, count, err := r.client.GetClient().From("tourist_spots").
		Select("id", "exact", false).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("観光地数の取得失敗: %w", err)
	}
	return count, nil
}

// fetchAll カタログの全件を取得する
func (r *SupabaseTouristSpotsRepository) fetchAll(ctx context.Context) ([]model.TouristSpot, error) {
	var spots []model.TouristSpot
	data, count, err := r.client.GetClient().From("tourist_spots").
		Select("*", "exact", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("観光地データの取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &spots); err != nil {
		return nil, fmt.Errorf("観光地データのJSONアンマーシャル失敗: %w", err)
	}

	return spots, nil
}

// sortByDistance 距離の近い順に並べ替える。距離が同じ場合はカタログの登録順
func sortByDistance(spots []model.TouristSpot, lat, lng float64) {
	sort.SliceStable(spots, func(i, j int) bool {
		di := helper.DistanceKm(lat, lng, spots[i].Latitude, spots[i].Longitude)
		dj := helper.DistanceKm(lat, lng, spots[j].Latitude, spots[j].Longitude)
		if di == dj {
			return spots[i].ID < spots[j].ID
		}
		return di < dj
	})
}
