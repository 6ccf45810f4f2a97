package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader リクエストID用のヘッダー名
const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware リクエストごとに一意なIDを割り当てるミドルウェア
// クライアントがIDを指定した場合はそれを引き継ぐ
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}
