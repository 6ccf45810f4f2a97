package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Dormung-App/internal/domain/model"
	"Dormung-App/internal/usecase"
)

// defaultSearchLimit 検索結果の既定件数
const defaultSearchLimit = 20

// TouristSpotHandler 観光地カタログAPIのハンドラー
type TouristSpotHandler struct {
	spotUseCase usecase.TouristSpotUseCase
}

// NewTouristSpotHandler 新しいTouristSpotHandlerインスタンスを作成
func NewTouristSpotHandler(spotUseCase usecase.TouristSpotUseCase) *TouristSpotHandler {
	return &TouristSpotHandler{
		spotUseCase: spotUseCase,
	}
}

// GetNearbySpots 周辺の観光地一覧を取得するエンドポイント
// GET /tour-spots/location?latitude=&longitude=&radius=&limit=
func (h *TouristSpotHandler) GetNearbySpots(c *gin.Context) {
	lat, lng, radiusKm, err := parseLocationQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	radius := 1.0
	if radiusKm != nil {
		radius = *radiusKm
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if n, parseErr := strconv.Atoi(raw); parseErr == nil && n > 0 {
			limit = n
		}
	}

	spots, err := h.spotUseCase.FindNearbySpots(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "周辺観光地の検索に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    spots,
	})
}

// SearchSpots キーワードで観光地を検索するエンドポイント
// GET /tour-spots/search?keyword=&limit=
func (h *TouristSpotHandler) SearchSpots(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "keywordが指定されていません",
		})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if n, parseErr := strconv.Atoi(raw); parseErr == nil && n > 0 {
			limit = n
		}
	}

	spots, err := h.spotUseCase.SearchSpots(c.Request.Context(), keyword, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "観光地の検索に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    spots,
	})
}

// GetSpotDetail 外部IDでカタログの詳細を取得するエンドポイント
// GET /tour-spots/detail?contentId=
func (h *TouristSpotHandler) GetSpotDetail(c *gin.Context) {
	contentID := c.Query("contentId")
	if contentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "contentIdが指定されていません",
		})
		return
	}

	spot, err := h.spotUseCase.GetSpotDetail(c.Request.Context(), contentID)
	if err != nil {
		if errors.Is(err, model.ErrSpotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "該当する観光地が見つかりません",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "観光地詳細の取得に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    spot,
	})
}

// SearchCachedInfo キャッシュ済みの観光地情報をキーワードで検索するエンドポイント
// GET /tour-spots/cache/search?keyword=
func (h *TouristSpotHandler) SearchCachedInfo(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "keywordが指定されていません",
		})
		return
	}

	results, err := h.spotUseCase.SearchCachedInfo(c.Request.Context(), keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "キャッシュの検索に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}
