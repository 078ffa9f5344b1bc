// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health は /healthz エンドポイントのハンドラーを返します。
// detailsは起動時に確定した値（カタログ件数や検出バックエンド名など）で、GETのレスポンスに含めます。
func Health(details map[string]any) gin.HandlerFunc {
	body := gin.H{}
	for k, v := range details {
		body[k] = v
	}
	body["status"] = "ok"

	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(http.StatusOK, body)
		}
	}
}
