package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Dormung-App/internal/infrastructure/visitjeju"
)

// DebugHandler ビジットジェジュAPIの診断用ハンドラー
// 疎通確認と設定確認のみを行い、キャッシュへの副作用はない
type DebugHandler struct {
	client *visitjeju.Client
}

// NewDebugHandler 新しいDebugHandlerインスタンスを作成
func NewDebugHandler(client *visitjeju.Client) *DebugHandler {
	return &DebugHandler{
		client: client,
	}
}

// GetAPIStatus API設定と疎通状態を取得するエンドポイント
// GET /test/status
func (h *DebugHandler) GetAPIStatus(c *gin.Context) {
	status := h.client.GetStatus(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// TestConnection APIへの疎通を確認するエンドポイント
// GET /test/connection
func (h *DebugHandler) TestConnection(c *gin.Context) {
	connected := h.client.TestConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"connected": connected,
	})
}

// GetContent キャッシュを経由せずAPIから直接コンテンツを取得するエンドポイント
// GET /test/content/:contentId
func (h *DebugHandler) GetContent(c *gin.Context) {
	contentID := c.Param("contentId")
	if contentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "contentIdが指定されていません",
		})
		return
	}

	info, err := h.client.GetContentByID(c.Request.Context(), contentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "APIからコンテンツを取得できませんでした",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}
