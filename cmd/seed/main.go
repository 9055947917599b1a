// 新聞データの投入ツール。
// 管理者としてログインし、JSONファイルに列挙した新聞をAPI経由で登録する。
//
//	seed -url http://localhost:8000 -file newspapers.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/pkg/httpclient"
)

// newspaperEntry は投入ファイルの1件分。
type newspaperEntry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	CountryCode string `json:"country_code"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createdNewspaper struct {
	ID          string `json:"id"`
	CountryCode string `json:"country_code"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "APIサーバーのベースURL")
	file := flag.String("file", "newspapers.json", "投入する新聞のJSONファイル")
	username := flag.String("username", envOr("ADMIN_USERNAME", "admin"), "管理者ユーザー名")
	password := flag.String("password", envOr("ADMIN_PASSWORD", "admin123"), "管理者パスワード")
	timeout := flag.Duration("timeout", time.Minute, "全体のタイムアウト")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, httpclient.New(*baseURL), *file, *username, *password, logger); err != nil {
		logger.Fatal().Err(err).Msg("新聞データの投入に失敗")
	}
}

func run(ctx context.Context, client *httpclient.Client, file, username, password string, logger zerolog.Logger) error {
	entries, err := readEntries(file)
	if err != nil {
		return err
	}

	var token loginResponse
	if err := client.PostJSON(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &token); err != nil {
		return fmt.Errorf("ログインに失敗: %w", err)
	}
	ctx = httpclient.WithAccessToken(ctx, token.AccessToken)

	var me struct {
		Username string `json:"username"`
	}
	if err := client.GetJSON(ctx, "/api/auth/verify", &me); err != nil {
		return fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	logger.Info().Str("username", me.Username).Int("entries", len(entries)).Msg("新聞の登録を開始します")

	created := 0
	for _, e := range entries {
		var n createdNewspaper
		if err := client.PostJSON(ctx, "/api/newspapers", e, &n); err != nil {
			logger.Warn().Err(err).Str("title", e.Title).Msg("新聞の登録をスキップしました")
			continue
		}
		created++
		logger.Info().Str("id", n.ID).Str("country_code", n.CountryCode).Str("title", e.Title).Msg("新聞を登録しました")
	}

	var countries []struct {
		CountryCode    string `json:"country_code"`
		NewspaperCount int    `json:"newspaper_count"`
	}
	if err := client.GetJSON(ctx, "/api/countries", &countries); err != nil {
		return fmt.Errorf("国別集計の取得に失敗: %w", err)
	}
	for _, c := range countries {
		logger.Info().Str("country_code", c.CountryCode).Int("newspaper_count", c.NewspaperCount).Msg("国別の登録数")
	}

	logger.Info().Int("created", created).Int("total", len(entries)).Msg("投入が完了しました")
	return nil
}

func readEntries(path string) ([]newspaperEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("投入ファイルの読み込みに失敗: %w", err)
	}
	var entries []newspaperEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("投入ファイルの解析に失敗: %w", err)
	}
	return entries, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
