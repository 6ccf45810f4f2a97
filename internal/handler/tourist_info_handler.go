package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/usecase"
)

// TouristInfoHandler 観光地情報APIのハンドラー
type TouristInfoHandler struct {
	infoUseCase usecase.TouristInfoUseCase
}

// NewTouristInfoHandler 新しいTouristInfoHandlerインスタンスを作成
func NewTouristInfoHandler(infoUseCase usecase.TouristInfoUseCase) *TouristInfoHandler {
	return &TouristInfoHandler{
		infoUseCase: infoUseCase,
	}
}

// GetTouristInfoByLocation 緯度経度で観光地情報を取得するエンドポイント
// GET /tourist-info/location?latitude=&longitude=&radius=
func (h *TouristInfoHandler) GetTouristInfoByLocation(c *gin.Context) {
	lat, lng, radiusKm, err := parseLocationQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	info, err := h.infoUseCase.GetTouristInfoByLocation(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		h.respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}

// GetTouristInfoByExternalID 外部IDで観光地情報を取得するエンドポイント
// GET /tourist-info/:externalId
func (h *TouristInfoHandler) GetTouristInfoByExternalID(c *gin.Context) {
	externalID := c.Param("externalId")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "externalIdが指定されていません",
		})
		return
	}

	info, err := h.infoUseCase.GetTouristInfoByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.respondResolutionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}

// GetCacheStats キャッシュ統計を取得するエンドポイント
// GET /tourist-info/cache/stats
func (h *TouristInfoHandler) GetCacheStats(c *gin.Context) {
	stats, err := h.infoUseCase.GetCacheStatistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "キャッシュ統計の取得に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// PostCacheCleanup キャッシュ整理を実行するエンドポイント
// POST /tourist-info/cache/cleanup
func (h *TouristInfoHandler) PostCacheCleanup(c *gin.Context) {
	result, err := h.infoUseCase.CleanupCaches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "キャッシュ整理に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// respondResolutionError 解決エラーをHTTPステータスに変換する
// 未解決（404）とバリデーション（400）と内部エラー（500）を区別する
func (h *TouristInfoHandler) respondResolutionError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrSpotNotFound) || errors.Is(err, model.ErrContentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "観光地情報が見つかりません",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "観光地情報の取得に失敗しました",
		"details": err.Error(),
	})
}

// parseLocationQuery 位置クエリパラメータを解析・検証する
// バリデーションに失敗したリクエストはどのキャッシュ層にも触れずに拒否される
func parseLocationQuery(c *gin.Context) (lat, lng float64, radiusKm *float64, err error) {
	lat, err = strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return 0, 0, nil, &ValidationError{Field: "latitude", Message: "緯度を数値で指定してください"}
	}

	lng, err = strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return 0, 0, nil, &ValidationError{Field: "longitude", Message: "経度を数値で指定してください"}
	}

	if lat < -90 || lat > 90 {
		return 0, 0, nil, &ValidationError{Field: "latitude", Message: "緯度は-90から90の範囲で指定してください"}
	}
	if lng < -180 || lng > 180 {
		return 0, 0, nil, &ValidationError{Field: "longitude", Message: "経度は-180から180の範囲で指定してください"}
	}

	if raw := c.Query("radius"); raw != "" {
		r, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil || r <= 0 {
			return 0, 0, nil, &ValidationError{Field: "radius", Message: "検索半径は正の数値で指定してください"}
		}
		radiusKm = &r
	}

	return lat, lng, radiusKm, nil
}

// ValidationError バリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
