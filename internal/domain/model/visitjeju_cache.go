package model

import "time"

// CacheExpiry キャッシュの有効期限（書き込みから24時間）
const CacheExpiry = 24 * time.Hour

// VisitJejuCache ビジットジェジュAPIレスポンスのPostgresバックアップエントリ
// 有効条件: is_active かつ expires_at が未来
type VisitJejuCache struct {
	ID            int64     `json:"id" db:"id"`
	TouristSpotID int64     `json:"tourist_spot_id" db:"tourist_spot_id"`
	ExternalID    string    `json:"external_id" db:"external_id"`
	Title         string    `json:"title" db:"title"`
	Introduction  string    `json:"introduction" db:"introduction"`
	Tag           string    `json:"tag" db:"tag"`
	Address       string    `json:"address" db:"address"`
	PhotoID       *int64    `json:"photo_id" db:"photo_id"`
	ImgPath       string    `json:"img_path" db:"img_path"`
	CachedAt      time.Time `json:"cached_at" db:"cached_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	IsActive      bool      `json:"is_active" db:"is_active"`
}

// IsExpired 指定時刻で有効期限が切れているかチェック
func (c *VisitJejuCache) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsValid 指定時刻でキャッシュが有効かチェック（活性状態 + 未失効）
func (c *VisitJejuCache) IsValid(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now)
}

// ToTouristInfo キャッシュエントリをレスポンスモデルに変換
// Sourceは呼び出し側で設定する
func (c *VisitJejuCache) ToTouristInfo() *TouristInfo {
	return &TouristInfo{
		ContentsID:   c.ExternalID,
		Title:        c.Title,
		Introduction: c.Introduction,
		Tag:          c.Tag,
		Address:      c.Address,
		PhotoID:      c.PhotoID,
		ImgPath:      c.ImgPath,
	}
}
