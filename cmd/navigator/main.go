// Global News Navigator のAPIサーバーのエントリポイント。
// 新聞の国別管理、管理者認証、購読者への新聞登録通知を1つのプロセスで提供する。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/internal/config"
	"github.com/globalnews/navigator/internal/navigator"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "navigator").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}
	logger = logger.Level(cfg.LogLevel)

	if cfg.UsesDefaultSecret() {
		logger.Warn().Msg("JWT_SECRETが未設定のため開発用の署名鍵を使用します")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := navigator.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("ストアの初期化に失敗")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("ストアのクローズに失敗")
		}
	}()

	server := navigator.NewServer(cfg, store, logger)
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("サーバーが異常終了しました")
		return
	}
	logger.Info().Msg("サーバーを停止しました")
}
