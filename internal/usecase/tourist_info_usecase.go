package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"Dormung-App/internal/domain/helper"
	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/domain/repository"
)

// oldCacheRetention 定期整理で削除する古いキャッシュの保持期間
const oldCacheRetention = 7 * 24 * time.Hour

// TouristInfoUseCase 観光地情報の段階的解決を提供する
// Redis → Postgres → ビジットジェジュAPI の順に問い合わせ、最初のヒットを返す
type TouristInfoUseCase interface {
	// GetTouristInfoByLocation 緯度経度から最寄り観光地の情報を解決する
	GetTouristInfoByLocation(ctx context.Context, lat, lng float64, radiusKm *float64) (*model.TouristInfo, error)

	// GetTouristInfoByExternalID 外部コンテンツIDで観光地の情報を解決する
	GetTouristInfoByExternalID(ctx context.Context, externalID string) (*model.TouristInfo, error)

	// GetCacheStatistics 全キャッシュ層の統計情報を取得する
	GetCacheStatistics(ctx context.Context) (*model.CacheStatistics, error)

	// CleanupCaches 失効済みキャッシュと古いキャッシュを整理する
	CleanupCaches(ctx context.Context) (*model.CacheCleanupResult, error)
}

// touristInfoUseCaseImpl TouristInfoUseCaseの実装
type touristInfoUseCaseImpl struct {
	spotsRepo repository.TouristSpotsRepository
	cacheRepo repository.VisitJejuCacheRepository
	redisRepo repository.RedisCacheRepository
	visitJeju repository.VisitJejuProvider
	locator   *helper.SpotLocatorHelper

	// 同一コンテンツIDへのAPI呼び出しを集約し、コールドキャッシュ時の
	// 重複呼び出しでAPIクォータを浪費しないようにする
	group singleflight.Group
}

// NewTouristInfoUseCase 新しいTouristInfoUseCaseインスタンスを作成する
func NewTouristInfoUseCase(
	spotsRepo repository.TouristSpotsRepository,
	cacheRepo repository.VisitJejuCacheRepository,
	redisRepo repository.RedisCacheRepository,
	visitJeju repository.VisitJejuProvider,
) TouristInfoUseCase {
	return &touristInfoUseCaseImpl{
		spotsRepo: spotsRepo,
		cacheRepo: cacheRepo,
		redisRepo: redisRepo,
		visitJeju: visitJeju,
		locator:   helper.NewSpotLocatorHelper(spotsRepo),
	}
}

// GetTouristInfoByLocation 緯度経度から最寄り観光地の情報を解決する
func (u *touristInfoUseCaseImpl) GetTouristInfoByLocation(ctx context.Context, lat, lng float64, radiusKm *float64) (*model.TouristInfo, error) {
	startTime := time.Now()
	log.Printf("🎯 観光地情報の解決開始: (%f, %f)", lat, lng)

	if err := helper.ValidateCoordinate(lat, lng, radiusKm); err != nil {
		return nil, err
	}

	// 位置マッピングキャッシュがあれば最寄り検索を省略できる
	// マッピングが古い可能性はあるが、後段のID解決が必ずレコード本体を確認する
	if externalID, ok := u.redisRepo.GetExternalIDByLocation(ctx, lat, lng); ok {
		log.Printf("⚡ 位置キャッシュヒット: (%f, %f) -> %s", lat, lng, externalID)
		return u.resolveByExternalID(ctx, externalID, startTime)
	}

	spot, err := u.locator.FindNearestSpot(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	log.Printf("📍 最寄りの観光地を発見: %s (ID: %s)", spot.Name, spot.ExternalID)

	info, err := u.getDetailWithCache(ctx, spot)
	if err != nil {
		return nil, err
	}

	u.finishResolution(info, startTime)
	return info, nil
}

// GetTouristInfoByExternalID 外部コンテンツIDで観光地の情報を解決する
func (u *touristInfoUseCaseImpl) GetTouristInfoByExternalID(ctx context.Context, externalID string) (*model.TouristInfo, error) {
	startTime := time.Now()
	log.Printf("🔍 外部IDで観光地情報を解決: %s", externalID)

	return u.resolveByExternalID(ctx, externalID, startTime)
}

func (u *touristInfoUseCaseImpl) resolveByExternalID(ctx context.Context, externalID string, startTime time.Time) (*model.TouristInfo, error) {
	spot, err := u.spotsRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		// カタログに行がないことと、カタログ自体の障害は区別する
		if errors.Is(err, model.ErrSpotNotFound) {
			log.Printf("⚠️ 該当する外部IDの観光地がありません: %s", externalID)
			return nil, model.ErrContentNotFound
		}
		return nil, fmt.Errorf("観光地カタログの照会に失敗: %w", err)
	}

	info, err := u.getDetailWithCache(ctx, spot)
	if err != nil {
		return nil, err
	}

	u.finishResolution(info, startTime)
	return info, nil
}

// getDetailWithCache キャッシュとAPIによる段階的解決
// Redis → Postgres → API の順。各キャッシュ層の障害はその層のミスとして
// 吸収し、カスケードは中断しない。最終層（API）の失敗のみが
// ErrContentNotFound として呼び出し側に見える
func (u *touristInfoUseCaseImpl) getDetailWithCache(ctx context.Context, spot *model.TouristSpot) (*model.TouristInfo, error) {
	externalID := spot.ExternalID

	// 1段階: Redisキャッシュ確認
	if info, ok := u.redisRepo.GetByExternalID(ctx, externalID); ok {
		log.Printf("⚡ Redisキャッシュから取得成功: %s", externalID)
		info.Source = model.SourceRedis
		return info, nil
	}

	// 2段階: Postgresキャッシュ確認
	entry, err := u.cacheRepo.FindValidByExternalID(ctx, externalID, time.Now())
	if err != nil {
		// 一時的な障害はこの層のミスとして扱い、次の層に進む
		log.Printf("⚠️ Postgresキャッシュの照会エラー（ミスとして継続）: %s - %v", externalID, err)
	}
	if entry != nil {
		log.Printf("🗄️ Postgresキャッシュから取得成功: %s", externalID)
		info := entry.ToTouristInfo()
		info.Source = model.SourcePostgres

		// Redisにバックフィルして次回以降の解決を高速化する
		u.redisRepo.SaveByExternalID(ctx, externalID, info)

		return info, nil
	}

	// 3段階: ビジットジェジュAPI呼び出し
	// 同一IDの同時解決はsingleflightで1回のAPI呼び出しに集約する
	v, err, _ := u.group.Do(externalID, func() (interface{}, error) {
		return u.visitJeju.GetContentByID(ctx, externalID)
	})
	if err != nil {
		log.Printf("❌ すべての層からデータを取得できませんでした: %s - %v", externalID, err)
		return nil, model.ErrContentNotFound
	}

	// singleflightの結果は待ち合わせた呼び出し全員で共有される。
	// SourceとResponseTimeは呼び出しスコープの情報なので、書き込む前にコピーする
	fetched := *v.(*model.TouristInfo)
	info := &fetched
	log.Printf("🌐 ビジットジェジュAPIから取得成功: %s", externalID)
	info.Source = model.SourceAPI

	// 両方のキャッシュ層に書き込む
	u.saveToAllCaches(ctx, spot, info)

	return info, nil
}

// saveToAllCaches 解決結果を全キャッシュ層に保存する
// 保存失敗は解決結果に影響させない
func (u *touristInfoUseCaseImpl) saveToAllCaches(ctx context.Context, spot *model.TouristSpot, info *model.TouristInfo) {
	u.redisRepo.SaveByExternalID(ctx, info.ContentsID, info)
	u.redisRepo.SaveLocationMapping(ctx, spot.Latitude, spot.Longitude, info.ContentsID)

	if err := u.cacheRepo.Upsert(ctx, spot.ID, info); err != nil {
		log.Printf("⚠️ Postgresキャッシュの保存失敗: %s - %v", info.ContentsID, err)
		return
	}

	log.Printf("💾 キャッシュ保存完了: %s", info.ContentsID)
}

// finishResolution 応答時間を記録する
func (u *touristInfoUseCaseImpl) finishResolution(info *model.TouristInfo, startTime time.Time) {
	info.ResponseTime = time.Since(startTime).Milliseconds()
	log.Printf("✅ 観光地情報の解決完了: %s (%dms, ソース: %s)", info.Title, info.ResponseTime, info.Source)
}

// GetCacheStatistics 全キャッシュ層の統計情報を取得する
func (u *touristInfoUseCaseImpl) GetCacheStatistics(ctx context.Context) (*model.CacheStatistics, error) {
	redisStats := u.redisRepo.Stats(ctx)

	postgresStats, err := u.cacheRepo.Stats(ctx, time.Now())
	if err != nil {
		log.Printf("⚠️ Postgresキャッシュ統計の取得失敗: %v", err)
		postgresStats = &model.PostgresCacheStats{}
	}

	totalSpots, err := u.spotsRepo.Count(ctx)
	if err != nil {
		log.Printf("⚠️ 観光地数の取得失敗: %v", err)
	}

	return &model.CacheStatistics{
		Redis:             *redisStats,
		Postgres:          *postgresStats,
		TotalTouristSpots: totalSpots,
	}, nil
}

// CleanupCaches 失効済みキャッシュと保持期間を過ぎた古いキャッシュを整理する
func (u *touristInfoUseCaseImpl) CleanupCaches(ctx context.Context) (*model.CacheCleanupResult, error) {
	log.Printf("🧹 キャッシュ整理開始...")
	now := time.Now()

	expiredCount, err := u.cacheRepo.DeleteExpired(ctx, now)
	if err != nil {
		log.Printf("⚠️ 失効キャッシュの削除失敗: %v", err)
	}

	oldCount, err := u.cacheRepo.DeleteOlderThan(ctx, now.Add(-oldCacheRetention))
	if err != nil {
		log.Printf("⚠️ 古いキャッシュの削除失敗: %v", err)
	}

	log.Printf("✅ キャッシュ整理完了: 失効%d件, 古いもの%d件", expiredCount, oldCount)

	return &model.CacheCleanupResult{
		ExpiredCachesCleaned: expiredCount,
		OldCachesCleaned:     oldCount,
		TotalCleaned:         expiredCount + oldCount,
	}, nil
}
