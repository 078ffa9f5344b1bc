// Package middleware はアプリケーション共通のginミドルウェアを提供します。
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDを運ぶHTTPヘッダー名です。
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID はリクエストごとにIDを割り当て、レスポンスヘッダーとリクエストのcontextに設定します。
// クライアントがIDを送ってきた場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Next()
	}
}

// RequestIDFrom はcontextに設定されたリクエストIDを返します。未設定の場合は空文字を返します。
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog はリクエストIDを含むアクセスログをslogで出力します。
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		attrs := []any{
			"requestId", RequestIDFrom(ctx),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if c.Writer.Status() >= 500 {
			slog.ErrorContext(ctx, "リクエスト処理失敗", attrs...)
			return
		}
		slog.InfoContext(ctx, "リクエスト処理完了", attrs...)
	}
}
