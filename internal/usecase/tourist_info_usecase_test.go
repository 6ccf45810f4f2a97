package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"Dormung-App/internal/domain/model"
)

// --- テスト用のフェイク実装 ---

type fakeSpotsRepo struct {
	spots            []model.TouristSpot
	findByIDErr      error
	withinRadiusErr  error
	withinRadiusCall int
	nearestCall      int
}

func (f *fakeSpotsRepo) FindByExternalID(ctx context.Context, externalID string) (*model.TouristSpot, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	for i := range f.spots {
		if f.spots[i].ExternalID == externalID {
			return &f.spots[i], nil
		}
	}
	return nil, model.ErrSpotNotFound
}

func (f *fakeSpotsRepo) FindWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]model.TouristSpot, error) {
	f.withinRadiusCall++
	if f.withinRadiusErr != nil {
		return nil, f.withinRadiusErr
	}
	return f.spots, nil
}

func (f *fakeSpotsRepo) FindNearest(ctx context.Context, lat, lng float64, limit int) ([]model.TouristSpot, error) {
	f.nearestCall++
	if len(f.spots) == 0 {
		return nil, nil
	}
	if limit > len(f.spots) {
		limit = len(f.spots)
	}
	return f.spots[:limit], nil
}

func (f *fakeSpotsRepo) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]model.TouristSpot, error) {
	return f.spots, nil
}

func (f *fakeSpotsRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.spots)), nil
}

type fakeCacheRepo struct {
	mu           sync.Mutex
	entries      map[string]*model.VisitJejuCache
	findErr      error
	upsertErr    error
	upsertCalls  []string
	expiredCount int64
	oldCount     int64
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string]*model.VisitJejuCache{}}
}

func (f *fakeCacheRepo) FindValidByExternalID(ctx context.Context, externalID string, now time.Time) (*model.VisitJejuCache, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	entry, ok := f.entries[externalID]
	if !ok || !entry.IsValid(now) {
		return nil, nil
	}
	return entry, nil
}

func (f *fakeCacheRepo) Upsert(ctx context.Context, touristSpotID int64, info *model.TouristInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertCalls = append(f.upsertCalls, info.ContentsID)
	return nil
}

func (f *fakeCacheRepo) Deactivate(ctx context.Context, externalID string) error {
	return nil
}

func (f *fakeCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.expiredCount, nil
}

func (f *fakeCacheRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.oldCount, nil
}

func (f *fakeCacheRepo) Stats(ctx context.Context, now time.Time) (*model.PostgresCacheStats, error) {
	return &model.PostgresCacheStats{TotalCount: int64(len(f.entries))}, nil
}

func (f *fakeCacheRepo) SearchByKeyword(ctx context.Context, keyword string, now time.Time) ([]model.VisitJejuCache, error) {
	return nil, nil
}

type fakeRedisRepo struct {
	mu            sync.Mutex
	records       map[string]*model.TouristInfo
	locations     map[string]string
	saveCalls     []string
	locationCalls []string
}

func newFakeRedisRepo() *fakeRedisRepo {
	return &fakeRedisRepo{
		records:   map[string]*model.TouristInfo{},
		locations: map[string]string{},
	}
}

func (f *fakeRedisRepo) GetByExternalID(ctx context.Context, externalID string) (*model.TouristInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.records[externalID]
	if !ok {
		return nil, false
	}
	copied := *info
	return &copied, true
}

func (f *fakeRedisRepo) SaveByExternalID(ctx context.Context, externalID string, info *model.TouristInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, externalID)
	copied := *info
	f.records[externalID] = &copied
}

func (f *fakeRedisRepo) GetExternalIDByLocation(ctx context.Context, lat, lng float64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.locations[locKey(lat, lng)]
	return id, ok
}

func (f *fakeRedisRepo) SaveLocationMapping(ctx context.Context, lat, lng float64, externalID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locationCalls = append(f.locationCalls, externalID)
	f.locations[locKey(lat, lng)] = externalID
}

func (f *fakeRedisRepo) DeleteByExternalID(ctx context.Context, externalID string) {
	delete(f.records, externalID)
}

func (f *fakeRedisRepo) DeleteAll(ctx context.Context) int64 {
	n := int64(len(f.records) + len(f.locations))
	f.records = map[string]*model.TouristInfo{}
	f.locations = map[string]string{}
	return n
}

func (f *fakeRedisRepo) Stats(ctx context.Context) *model.RedisCacheStats {
	return &model.RedisCacheStats{
		VisitJejuCacheCount: int64(len(f.records)),
		LocationCacheCount:  int64(len(f.locations)),
		TotalCacheCount:     int64(len(f.records) + len(f.locations)),
	}
}

func locKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f:%.6f", lat, lng)
}

type fakeVisitJejuProvider struct {
	infos map[string]*model.TouristInfo
	delay time.Duration

	mu        sync.Mutex
	callCount int
}

func newFakeProvider() *fakeVisitJejuProvider {
	return &fakeVisitJejuProvider{infos: map[string]*model.TouristInfo{}}
}

func (f *fakeVisitJejuProvider) GetContentByID(ctx context.Context, contentsID string) (*model.TouristInfo, error) {
	f.mu.Lock()
	f.callCount++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	info, ok := f.infos[contentsID]
	if !ok {
		return nil, model.ErrContentNotFound
	}
	copied := *info
	return &copied, nil
}

func (f *fakeVisitJejuProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

func (f *fakeVisitJejuProvider) SearchContents(ctx context.Context, keyword string, page, size int) ([]model.TouristInfo, error) {
	return nil, nil
}

func (f *fakeVisitJejuProvider) TestConnection(ctx context.Context) bool {
	return true
}

// --- テスト本体 ---

func testSpot() model.TouristSpot {
	return model.TouristSpot{
		ID:         1,
		ExternalID: "CNTS_001",
		Name:       "城山日出峰",
		Address:    "済州特別自治道 西帰浦市",
		Latitude:   33.458,
		Longitude:  126.942,
	}
}

func testInfo(source model.CacheSource) *model.TouristInfo {
	return &model.TouristInfo{
		ContentsID:   "CNTS_001",
		Title:        "城山日出峰",
		Introduction: "ユネスコ世界自然遺産の火山地形。",
		Tag:          "日の出,火山,世界遺産",
		Address:      "済州特別自治道 西帰浦市",
		Source:       source,
	}
}

func TestGetTouristInfoByLocation_CacheCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("Redisキャッシュヒット時はPostgresとAPIを呼ばない", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()
		redisRepo.records["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.Source != model.SourceRedis {
			t.Errorf("ソースがREDISではありません: %s", info.Source)
		}
		if provider.callCount != 0 {
			t.Errorf("APIが呼ばれています: %d回", provider.callCount)
		}
	})

	t.Run("Postgresキャッシュヒット時はRedisにバックフィルする", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()

		now := time.Now()
		cacheRepo.entries["CNTS_001"] = &model.VisitJejuCache{
			TouristSpotID: 1,
			ExternalID:    "CNTS_001",
			Title:         "城山日出峰",
			CachedAt:      now,
			ExpiresAt:     now.Add(model.CacheExpiry),
			IsActive:      true,
		}

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.Source != model.SourcePostgres {
			t.Errorf("ソースがPOSTGRESではありません: %s", info.Source)
		}
		if len(redisRepo.saveCalls) != 1 || redisRepo.saveCalls[0] != "CNTS_001" {
			t.Errorf("Redisへのバックフィルが行われていません: %v", redisRepo.saveCalls)
		}
		if provider.callCount != 0 {
			t.Errorf("APIが呼ばれています: %d回", provider.callCount)
		}
	})

	t.Run("両キャッシュミス時はAPIから取得して全層に保存する", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()
		provider.infos["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.Source != model.SourceAPI {
			t.Errorf("ソースがAPIではありません: %s", info.Source)
		}
		if provider.callCount != 1 {
			t.Errorf("API呼び出し回数が不正: %d回", provider.callCount)
		}
		if len(redisRepo.saveCalls) != 1 {
			t.Errorf("Redisレコードが保存されていません: %v", redisRepo.saveCalls)
		}
		if len(redisRepo.locationCalls) != 1 {
			t.Errorf("位置マッピングが保存されていません: %v", redisRepo.locationCalls)
		}
		if len(cacheRepo.upsertCalls) != 1 {
			t.Errorf("Postgresキャッシュが保存されていません: %v", cacheRepo.upsertCalls)
		}
	})

	t.Run("失効済みPostgresキャッシュは無視してAPIへフォールバックする", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()
		provider.infos["CNTS_001"] = testInfo("")

		now := time.Now()
		cacheRepo.entries["CNTS_001"] = &model.VisitJejuCache{
			ExternalID: "CNTS_001",
			Title:      "古いデータ",
			CachedAt:   now.Add(-48 * time.Hour),
			ExpiresAt:  now.Add(-24 * time.Hour),
			IsActive:   true,
		}

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.Source != model.SourceAPI {
			t.Errorf("ソースがAPIではありません: %s", info.Source)
		}
		if info.Title != "城山日出峰" {
			t.Errorf("失効キャッシュのデータが返されています: %s", info.Title)
		}
	})

	t.Run("Postgres照会エラーはミスとして扱いAPIへ進む", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		cacheRepo.findErr = errors.New("connection refused")
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()
		provider.infos["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("キャッシュ層の障害が伝播しています: %v", err)
		}
		if info.Source != model.SourceAPI {
			t.Errorf("ソースがAPIではありません: %s", info.Source)
		}
	})

	t.Run("全層ミス時はErrContentNotFoundでキャッシュには何も書かない", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		_, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if !errors.Is(err, model.ErrContentNotFound) {
			t.Fatalf("ErrContentNotFoundではありません: %v", err)
		}
		if len(redisRepo.saveCalls) != 0 || len(cacheRepo.upsertCalls) != 0 {
			t.Errorf("失敗時にキャッシュが書き込まれています")
		}
	})

	t.Run("2回目の解決はRedisから返る", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()
		provider.infos["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		first, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("1回目の解決に失敗: %v", err)
		}
		if first.Source != model.SourceAPI {
			t.Fatalf("1回目のソースがAPIではありません: %s", first.Source)
		}

		second, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("2回目の解決に失敗: %v", err)
		}
		if second.Source != model.SourceRedis {
			t.Errorf("2回目のソースがREDISではありません: %s", second.Source)
		}
		if provider.callCount != 1 {
			t.Errorf("APIが再度呼ばれています: %d回", provider.callCount)
		}
	})

	t.Run("緯度が範囲外なら層に触れずにエラーを返す", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		_, err := uc.GetTouristInfoByLocation(ctx, 91.0, 126.942, nil)
		if err == nil {
			t.Fatal("バリデーションエラーが返されていません")
		}
		if spotsRepo.withinRadiusCall != 0 || provider.callCount != 0 {
			t.Errorf("バリデーション失敗後に層が呼ばれています")
		}
	})
}

func TestGetTouristInfoByLocation_LocationMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("位置マッピングヒット時は最寄り検索を省略する", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		cacheRepo := newFakeCacheRepo()
		redisRepo := newFakeRedisRepo()
		provider := newFakeProvider()

		redisRepo.locations[locKey(33.458, 126.942)] = "CNTS_001"
		redisRepo.records["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, cacheRepo, redisRepo, provider)

		info, err := uc.GetTouristInfoByLocation(ctx, 33.458, 126.942, nil)
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.Source != model.SourceRedis {
			t.Errorf("ソースがREDISではありません: %s", info.Source)
		}
		if spotsRepo.withinRadiusCall != 0 {
			t.Errorf("位置マッピングがあるのに最寄り検索が実行されています")
		}
	})
}

func TestGetTouristInfoByExternalID(t *testing.T) {
	ctx := context.Background()

	t.Run("カタログに存在しないIDはErrContentNotFound", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{}
		uc := NewTouristInfoUseCase(spotsRepo, newFakeCacheRepo(), newFakeRedisRepo(), newFakeProvider())

		_, err := uc.GetTouristInfoByExternalID(ctx, "CNTS_UNKNOWN")
		if !errors.Is(err, model.ErrContentNotFound) {
			t.Fatalf("ErrContentNotFoundではありません: %v", err)
		}
	})

	t.Run("カタログの障害はErrContentNotFoundに変換しない", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{findByIDErr: errors.New("connection refused")}
		uc := NewTouristInfoUseCase(spotsRepo, newFakeCacheRepo(), newFakeRedisRepo(), newFakeProvider())

		_, err := uc.GetTouristInfoByExternalID(ctx, "CNTS_001")
		if err == nil {
			t.Fatal("エラーが返されていません")
		}
		if errors.Is(err, model.ErrContentNotFound) {
			t.Errorf("カタログの障害が未発見エラーに変換されています: %v", err)
		}
	})

	t.Run("カタログに存在するIDはカスケードで解決される", func(t *testing.T) {
		spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
		provider := newFakeProvider()
		provider.infos["CNTS_001"] = testInfo("")

		uc := NewTouristInfoUseCase(spotsRepo, newFakeCacheRepo(), newFakeRedisRepo(), provider)

		info, err := uc.GetTouristInfoByExternalID(ctx, "CNTS_001")
		if err != nil {
			t.Fatalf("解決に失敗: %v", err)
		}
		if info.ContentsID != "CNTS_001" {
			t.Errorf("コンテンツIDが一致しません: %s", info.ContentsID)
		}
		if info.ResponseTime < 0 {
			t.Errorf("応答時間が記録されていません: %d", info.ResponseTime)
		}
	})
}

// TestGetTouristInfoByExternalID_ConcurrentColdResolution コールドキャッシュ時の
// 同時解決を検証する。API呼び出しは1回に集約されるが、各呼び出しは独立した
// レコードを受け取らなければならない（SourceとResponseTimeは呼び出しスコープ）
func TestGetTouristInfoByExternalID_ConcurrentColdResolution(t *testing.T) {
	ctx := context.Background()

	spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
	provider := newFakeProvider()
	provider.infos["CNTS_001"] = testInfo("")
	provider.delay = 100 * time.Millisecond

	uc := NewTouristInfoUseCase(spotsRepo, newFakeCacheRepo(), newFakeRedisRepo(), provider)

	const callers = 2
	results := make([]*model.TouristInfo, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = uc.GetTouristInfoByExternalID(ctx, "CNTS_001")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("%d番目の解決に失敗: %v", i, errs[i])
		}
		if results[i].Source != model.SourceAPI {
			t.Errorf("%d番目のソースがAPIではありません: %s", i, results[i].Source)
		}
	}

	if provider.calls() != 1 {
		t.Errorf("API呼び出しが集約されていません: %d回", provider.calls())
	}
	if results[0] == results[1] {
		t.Errorf("同時解決が同一レコードを共有しています: %p", results[0])
	}
}

func TestCleanupCaches(t *testing.T) {
	ctx := context.Background()

	cacheRepo := newFakeCacheRepo()
	cacheRepo.expiredCount = 3
	cacheRepo.oldCount = 2

	uc := NewTouristInfoUseCase(&fakeSpotsRepo{}, cacheRepo, newFakeRedisRepo(), newFakeProvider())

	result, err := uc.CleanupCaches(ctx)
	if err != nil {
		t.Fatalf("キャッシュ整理に失敗: %v", err)
	}
	if result.ExpiredCachesCleaned != 3 || result.OldCachesCleaned != 2 {
		t.Errorf("削除件数が不正: %+v", result)
	}
	if result.TotalCleaned != 5 {
		t.Errorf("合計件数が不正: %d", result.TotalCleaned)
	}
}

func TestGetCacheStatistics(t *testing.T) {
	ctx := context.Background()

	spotsRepo := &fakeSpotsRepo{spots: []model.TouristSpot{testSpot()}}
	redisRepo := newFakeRedisRepo()
	redisRepo.records["CNTS_001"] = testInfo("")

	uc := NewTouristInfoUseCase(spotsRepo, newFakeCacheRepo(), redisRepo, newFakeProvider())

	stats, err := uc.GetCacheStatistics(ctx)
	if err != nil {
		t.Fatalf("統計取得に失敗: %v", err)
	}
	if stats.Redis.VisitJejuCacheCount != 1 {
		t.Errorf("Redisキャッシュ件数が不正: %d", stats.Redis.VisitJejuCacheCount)
	}
	if stats.TotalTouristSpots != 1 {
		t.Errorf("観光地総数が不正: %d", stats.TotalTouristSpots)
	}
}
