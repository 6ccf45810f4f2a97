package model

// CacheSource データがどの層から取得されたかを表す
type CacheSource string

const (
	SourceRedis    CacheSource = "REDIS"    // Redisキャッシュから取得
	SourcePostgres CacheSource = "POSTGRES" // Postgresバックアップから取得
	SourceAPI      CacheSource = "API"      // ビジットジェジュAPIから直接取得
)

// TouristInfo 観光地情報のレスポンスモデル（7つの中核フィールド + キャッシュ情報）
// 解決のたびに組み立てられる。SourceとResponseTimeは呼び出しスコープの情報であり、
// このままの形で永続化されることはない
type TouristInfo struct {
	ContentsID   string      `json:"contentsId"`
	Title        string      `json:"title"`
	Introduction string      `json:"introduction"`
	Tag          string      `json:"tag"`
	Address      string      `json:"address"`
	PhotoID      *int64      `json:"photoId,omitempty"`
	ImgPath      string      `json:"imgPath,omitempty"`
	Source       CacheSource `json:"source,omitempty"`
	ResponseTime int64       `json:"responseTime,omitempty"` // 応答時間（ミリ秒）
}
