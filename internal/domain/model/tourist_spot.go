package model

import "time"

// LatLng 緯度経度を表す基本的な型
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TouristSpot 観光地カタログのエントリを表すモデル
// カタログは外部のインポート処理が所有しており、このアプリからは読み取り専用
type TouristSpot struct {
	ID           int64     `json:"id" db:"id"`
	ExternalID   string    `json:"external_id" db:"external_id"` // ビジットジェジュのコンテンツID
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	Description  string    `json:"description" db:"description"`
	Category     string    `json:"category" db:"category"`
	Tag          string    `json:"tag" db:"tag"`
	Introduction string    `json:"introduction" db:"introduction"`
	ImgPath      string    `json:"img_path" db:"img_path"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ToLatLng 観光地の位置情報をLatLng型に変換
func (s *TouristSpot) ToLatLng() LatLng {
	return LatLng{
		Lat: s.Latitude,
		Lng: s.Longitude,
	}
}

// HasImage 画像が設定されているかチェック
func (s *TouristSpot) HasImage() bool {
	return s.ImgPath != ""
}
