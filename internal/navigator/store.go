package navigator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/internal/auth"
	"github.com/globalnews/navigator/internal/config"
	"github.com/globalnews/navigator/internal/newspaper"
	"github.com/globalnews/navigator/internal/notification"
	"github.com/globalnews/navigator/internal/storage/postgres"
	"github.com/globalnews/navigator/internal/storage/sqlite"
)

// Store はサーバーが必要とする全てのリポジトリを備えた永続化層。
type Store interface {
	notification.TokenRepository
	notification.SubscriptionRepository
	notification.NotificationRepository
	auth.UserRepository
	newspaper.Repository

	Ping(ctx context.Context) error
	Close() error
}

// OpenStore は設定されたドライバーでストアを開く。
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("SQLiteストアの初期化に失敗: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("PostgreSQLストアの初期化に失敗: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("未対応のDB_DRIVERです: %q", cfg.DBDriver)
	}
}
