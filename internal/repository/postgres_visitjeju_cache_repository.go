package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
	"Dormung-App/internal/infrastructure/database"
)

// cacheColumns visitjeju_cacheテーブルの取得カラム
const cacheColumns = `id, tourist_spot_id, external_id, title,
	COALESCE(introduction, ''), COALESCE(tag, ''), COALESCE(address, ''),
	photo_id, COALESCE(img_path, ''), cached_at, expires_at, is_active`

type PostgresVisitJejuCacheRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresVisitJejuCacheRepository 新しいPostgresVisitJejuCacheRepositoryを作成する
func NewPostgresVisitJejuCacheRepository(client *database.PostgreSQLClient) repository.VisitJejuCacheRepository {
	return &PostgresVisitJejuCacheRepository{
		client: client,
	}
}

// scanCache 1行分のキャッシュデータを型付きでスキャンする
func scanCache(row interface{ Scan(...interface{}) error }) (*model.VisitJejuCache, error) {
	var entry model.VisitJejuCache
	var photoID sql.NullInt64
	err := row.Scan(
		&entry.ID, &entry.TouristSpotID, &entry.ExternalID, &entry.Title,
		&entry.Introduction, &entry.Tag, &entry.Address,
		&photoID, &entry.ImgPath, &entry.CachedAt, &entry.ExpiresAt, &entry.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if photoID.Valid {
		entry.PhotoID = &photoID.Int64
	}
	return &entry, nil
}

// FindValidByExternalID 活性かつ未失効のキャッシュを取得する
// 非活性・失効済みの行はヒットとして扱わない
func (r *PostgresVisitJejuCacheRepository) FindValidByExternalID(ctx context.Context, externalID string, now time.Time) (*model.VisitJejuCache, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM visitjeju_cache
		WHERE external_id = $1
		AND is_active = true
		AND expires_at > $2
	`, cacheColumns)

	entry, err := scanCache(r.client.DB.QueryRowContext(ctx, query, externalID, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("キャッシュデータの取得失敗: %w", err)
	}

	return entry, nil
}

// Upsert 外部IDをキーにキャッシュを作成または更新する
// ON CONFLICTにより外部ID単位でアトミックに行われ、同一IDへの同時書き込みは
// 後勝ちになる（元データが冪等なAPIペイロードのためこれで十分）
func (r *PostgresVisitJejuCacheRepository) Upsert(ctx context.Context, touristSpotID int64, info *model.TouristInfo) error {
	now := time.Now()
	expiresAt := now.Add(model.CacheExpiry)

	var photoID sql.NullInt64
	if info.PhotoID != nil {
		photoID = sql.NullInt64{Int64: *info.PhotoID, Valid: true}
	}

	query := `
		INSERT INTO visitjeju_cache
			(tourist_spot_id, external_id, title, introduction, tag, address,
			 photo_id, img_path, cached_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
		ON CONFLICT (external_id) DO UPDATE SET
			title = EXCLUDED.title,
			introduction = EXCLUDED.introduction,
			tag = EXCLUDED.tag,
			address = EXCLUDED.address,
			photo_id = EXCLUDED.photo_id,
			img_path = EXCLUDED.img_path,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at,
			is_active = true
	`

	_, err := r.client.DB.ExecContext(ctx, query,
		touristSpotID, info.ContentsID, info.Title, info.Introduction,
		info.Tag, info.Address, photoID, info.ImgPath, now, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("キャッシュの保存失敗: %w", err)
	}

	return nil
}

// Deactivate 指定キャッシュを論理削除する
func (r *PostgresVisitJejuCacheRepository) Deactivate(ctx context.Context, externalID string) error {
	query := `UPDATE visitjeju_cache SET is_active = false WHERE external_id = $1`
	if _, err := r.client.DB.ExecContext(ctx, query, externalID); err != nil {
		return fmt.Errorf("キャッシュの無効化失敗: %w", err)
	}
	return nil
}

// DeleteExpired 失効済みまたは非活性のキャッシュを一括削除する
func (r *PostgresVisitJejuCacheRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM visitjeju_cache WHERE expires_at <= $1 OR is_active = false`

	result, err := r.client.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("失効キャッシュの削除失敗: %w", err)
	}

	return result.RowsAffected()
}

// DeleteOlderThan 指定時刻より前にキャッシュされた行を削除する
func (r *PostgresVisitJejuCacheRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM visitjeju_cache WHERE cached_at < $1`

	result, err := r.client.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("古いキャッシュの削除失敗: %w", err)
	}

	return result.RowsAffected()
}

// Stats キャッシュの統計情報を1クエリで取得する
func (r *PostgresVisitJejuCacheRepository) Stats(ctx context.Context, now time.Time) (*model.PostgresCacheStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_active AND expires_at > $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= $1 OR NOT is_active THEN 1 ELSE 0 END), 0)
		FROM visitjeju_cache
	`

	var stats model.PostgresCacheStats
	err := r.client.DB.QueryRowContext(ctx, query, now).Scan(
		&stats.TotalCount, &stats.ValidCount, &stats.ExpiredCount,
	)
	if err != nil {
		return nil, fmt.Errorf("キャッシュ統計の取得失敗: %w", err)
	}

	return &stats, nil
}

// SearchByKeyword タイトルまたはタグにキーワードを含む有効なキャッシュを検索する
func (r *PostgresVisitJejuCacheRepository) SearchByKeyword(ctx context.Context, keyword string, now time.Time) ([]model.VisitJejuCache, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM visitjeju_cache
		WHERE is_active = true
		AND expires_at > $2
		AND (title ILIKE '%%' || $1 || '%%' OR tag ILIKE '%%' || $1 || '%%')
		ORDER BY cached_at DESC
	`, cacheColumns)

	rows, err := r.client.DB.QueryContext(ctx, query, keyword, now)
	if err != nil {
		return nil, fmt.Errorf("キャッシュのキーワード検索失敗: %w", err)
	}
	defer rows.Close()

	var entries []model.VisitJejuCache
	for rows.Next() {
		entry, err := scanCache(rows)
		if err != nil {
			return nil, fmt.Errorf("キャッシュデータのスキャンエラー: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("行イテレーション中のエラー: %w", err)
	}

	return entries, nil
}
