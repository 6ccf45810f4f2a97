package repository

import (
	"context"
	"database/sql"
	"fmt"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
	"Dormung-App/internal/infrastructure/database"
)

// spotColumns tourist_spotsテーブルの取得カラム
const spotColumns = `id, external_id, name, address, latitude, longitude,
	COALESCE(description, ''), COALESCE(category, ''), COALESCE(tag, ''),
	COALESCE(introduction, ''), COALESCE(img_path, ''), created_at, updated_at`

// haversineExpr ハーバーサイン公式による2点間の距離（km）
// $1 = 緯度, $2 = 経度
const haversineExpr = `(
	6371 * acos(
		cos(radians($1)) *
		cos(radians(latitude)) *
		cos(radians(longitude) - radians($2)) +
		sin(radians($1)) *
		sin(radians(latitude))
	)
)`

type PostgresTouristSpotsRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresTouristSpotsRepository 新しいPostgresTouristSpotsRepositoryを作成する
func NewPostgresTouristSpotsRepository(client *database.PostgreSQLClient) repository.TouristSpotsRepository {
	return &PostgresTouristSpotsRepository{
		client: client,
	}
}

// scanSpot 1行分の観光地データを型付きでスキャンする
func scanSpot(row interface{ Scan(...interface{}) error }) (*model.TouristSpot, error) {
	var spot model.TouristSpot
	err := row.Scan(
		&spot.ID, &spot.ExternalID, &spot.Name, &spot.Address,
		&spot.Latitude, &spot.Longitude, &spot.Description, &spot.Category,
		&spot.Tag, &spot.Introduction, &spot.ImgPath, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *PostgresTouristSpotsRepository) FindByExternalID(ctx context.Context, externalID string) (*model.TouristSpot, error) {
	query := fmt.Sprintf(`SELECT %s FROM tourist_spots WHERE external_id = $1`, spotColumns)

	spot, err := scanSpot(r.client.DB.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrSpotNotFound
		}
		return nil, fmt.Errorf("観光地データの取得失敗: %w", err)
	}

	return spot, nil
}

// FindWithinRadius 半径radiusKm以内の観光地を距離の近い順に取得する
// 距離が同じ場合はカタログの登録順（id昇順）で安定的に並べる
func (r *PostgresTouristSpotsRepository) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]model.TouristSpot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tourist_spots
		WHERE %s <= $3
		ORDER BY %s, id
	`, spotColumns, haversineExpr, haversineExpr)

	rows, err := r.client.DB.QueryContext(ctx, query, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("半径内の観光地検索失敗: %w", err)
	}
	defer rows.Close()

	return collectSpots(rows)
}

// FindNearest 最も近い観光地をlimit件取得する（半径の制限なし）
func (r *PostgresTouristSpotsRepository) FindNearest(ctx context.Context, lat, lng float64, limit int) ([]model.TouristSpot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tourist_spots
		ORDER BY %s, id
		LIMIT $3
	`, spotColumns, haversineExpr)

	rows, err := r.client.DB.QueryContext(ctx, query, lat, lng, limit)
	if err != nil {
		return nil, fmt.Errorf("最寄り観光地の検索失敗: %w", err)
	}
	defer rows.Close()

	return collectSpots(rows)
}

func (r *PostgresTouristSpotsRepository) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.TouristSpot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tourist_spots
		WHERE name ILIKE '%%' || $1 || '%%' OR address ILIKE '%%' || $1 || '%%'
		ORDER BY name
		LIMIT $2
	`, spotColumns)

	rows, err := r.client.DB.QueryContext(ctx, query, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("観光地のキーワード検索失敗: %w", err)
	}
	defer rows.Close()

	return collectSpots(rows)
}

func (r *PostgresTouristSpotsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.client.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tourist_spots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("観光地数の取得失敗: %w", err)
	}
	return count, nil
}

// collectSpots 検索結果の全行を型付きでスキャンする
func collectSpots(rows *sql.Rows) ([]model.TouristSpot, error) {
	var spots []model.TouristSpot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("観光地データのスキャンエラー: %w", err)
		}
		spots = append(spots, *spot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}
	return spots, nil
}
