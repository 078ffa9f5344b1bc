// token はAPIクライアント向けのHS256 Bearerトークンを発行します。
// 署名鍵は環境変数 JWT_SECRET から読み込みます。
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "smartcal_backend/internal/platform/jwt"
)

func main() {
	clientID := flag.String("client", "", "client id stored in the sub claim (required)")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}
	if *clientID == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*clientID)
	if err != nil {
		slog.Error("トークンの発行に失敗しました", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
