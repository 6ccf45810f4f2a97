package helper

import (
	"context"
	"errors"
	"math"
	"testing"

	"Dormung-App/internal/domain/model"
)

type stubSpotsRepo struct {
	withinRadius []model.TouristSpot
	nearest      []model.TouristSpot
	withinErr    error
	nearestErr   error
	nearestCall  int
}

func (s *stubSpotsRepo) FindByExternalID(ctx context.Context, externalID string) (*model.TouristSpot, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSpotsRepo) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]model.TouristSpot, error) {
	if s.withinErr != nil {
		return nil, s.withinErr
	}
	return s.withinRadius, nil
}

func (s *stubSpotsRepo) FindNearest(ctx context.Context, lat, lng float64, limit int) ([]model.TouristSpot, error) {
	s.nearestCall++
	if s.nearestErr != nil {
		return nil, s.nearestErr
	}
	return s.nearest, nil
}

func (s *stubSpotsRepo) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.TouristSpot, error) {
	return nil, nil
}

func (s *stubSpotsRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.withinRadius)), nil
}

func TestValidateCoordinate(t *testing.T) {
	radius := 2.0
	negativeRadius := -1.0

	testCases := []struct {
		name    string
		lat     float64
		lng     float64
		radius  *float64
		wantErr bool
	}{
		{"正常な座標", 33.458, 126.942, nil, false},
		{"半径指定あり", 33.458, 126.942, &radius, false},
		{"緯度が上限超過", 90.1, 126.942, nil, true},
		{"緯度が下限未満", -90.1, 126.942, nil, true},
		{"経度が上限超過", 33.458, 180.1, nil, true},
		{"経度が下限未満", 33.458, -180.1, nil, true},
		{"半径が負", 33.458, 126.942, &negativeRadius, true},
		{"境界値は有効", 90.0, -180.0, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCoordinate(tc.lat, tc.lng, tc.radius)
			if tc.wantErr && err == nil {
				t.Errorf("エラーが期待されましたが nil でした")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("予期しないエラー: %v", err)
			}
		})
	}
}

func TestFindNearestSpot(t *testing.T) {
	ctx := context.Background()

	inRadius := model.TouristSpot{ID: 1, ExternalID: "CNTS_001", Name: "城山日出峰", Latitude: 33.458, Longitude: 126.942}
	farAway := model.TouristSpot{ID: 2, ExternalID: "CNTS_002", Name: "漢拏山", Latitude: 33.361, Longitude: 126.529}

	t.Run("半径内に観光地があれば最も近い1件を返す", func(t *testing.T) {
		repo := &stubSpotsRepo{withinRadius: []model.TouristSpot{inRadius, farAway}}
		locator := NewSpotLocatorHelper(repo)

		spot, err := locator.FindNearestSpot(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("検索に失敗: %v", err)
		}
		if spot.ExternalID != "CNTS_001" {
			t.Errorf("最も近い観光地が返されていません: %s", spot.ExternalID)
		}
		if repo.nearestCall != 0 {
			t.Errorf("半径内ヒットなのにフォールバック検索が実行されています")
		}
	})

	t.Run("半径内に1件もなければ最寄り1件にフォールバックする", func(t *testing.T) {
		repo := &stubSpotsRepo{nearest: []model.TouristSpot{farAway}}
		locator := NewSpotLocatorHelper(repo)

		spot, err := locator.FindNearestSpot(ctx, 33.0, 127.5, nil)
		if err != nil {
			t.Fatalf("フォールバック検索に失敗: %v", err)
		}
		if spot.ExternalID != "CNTS_002" {
			t.Errorf("フォールバック結果が不正: %s", spot.ExternalID)
		}
		if repo.nearestCall != 1 {
			t.Errorf("フォールバック検索の回数が不正: %d", repo.nearestCall)
		}
	})

	t.Run("カタログが空ならErrSpotNotFound", func(t *testing.T) {
		repo := &stubSpotsRepo{}
		locator := NewSpotLocatorHelper(repo)

		_, err := locator.FindNearestSpot(ctx, 33.458, 126.942, nil)
		if !errors.Is(err, model.ErrSpotNotFound) {
			t.Fatalf("ErrSpotNotFoundではありません: %v", err)
		}
	})

	t.Run("リポジトリの障害はそのままエラーとして返る", func(t *testing.T) {
		repo := &stubSpotsRepo{withinErr: errors.New("connection refused")}
		locator := NewSpotLocatorHelper(repo)

		_, err := locator.FindNearestSpot(ctx, 33.458, 126.942, nil)
		if err == nil {
			t.Fatal("エラーが返されていません")
		}
		if errors.Is(err, model.ErrSpotNotFound) {
			t.Errorf("障害がErrSpotNotFoundに変換されています: %v", err)
		}
	})

	t.Run("不正な座標はリポジトリに触れずにエラー", func(t *testing.T) {
		repo := &stubSpotsRepo{withinRadius: []model.TouristSpot{inRadius}}
		locator := NewSpotLocatorHelper(repo)

		_, err := locator.FindNearestSpot(ctx, 33.458, 181.0, nil)
		if err == nil {
			t.Fatal("バリデーションエラーが返されていません")
		}
	})
}

func TestDistanceKm(t *testing.T) {
	// 城山日出峰と漢拏山の距離はおよそ40km
	distance := DistanceKm(33.458, 126.942, 33.361, 126.529)
	if distance < 35 || distance > 45 {
		t.Errorf("距離の計算結果が想定範囲外: %.2fkm", distance)
	}

	// 同一地点は0km
	same := DistanceKm(33.458, 126.942, 33.458, 126.942)
	if math.Abs(same) > 0.001 {
		t.Errorf("同一地点の距離が0ではありません: %.6fkm", same)
	}
}
