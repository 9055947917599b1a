// Package postgres は gorm と PostgreSQL を使った永続化層を提供する。
//
// 国コードの集合と通知データは jsonb 列に保存する。
package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/globalnews/navigator/internal/auth"
	"github.com/globalnews/navigator/internal/newspaper"
	"github.com/globalnews/navigator/internal/notification"
)

// Store は全リポジトリを実装するPostgreSQLストア。
type Store struct {
	db *gorm.DB
}

var (
	_ notification.TokenRepository        = (*Store)(nil)
	_ notification.SubscriptionRepository = (*Store)(nil)
	_ notification.NotificationRepository = (*Store)(nil)
	_ auth.UserRepository                 = (*Store)(nil)
	_ newspaper.Repository                = (*Store)(nil)
)

// Open はPostgreSQLに接続し、スキーマを AutoMigrate で適用する。
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Info().Msg("PostgreSQLのスキーマを適用しました")
	return s, nil
}

// New は既存のgorm接続からStoreを生成する。
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate はテーブルとインデックスを作成・更新する。
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&newspaperRow{},
		&pushTokenRow{},
		&subscriptionRow{},
		&notificationRow{},
	); err != nil {
		return fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return nil
}

// Ping はデータベースに到達できるか確認する。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// 各操作は単一の文で完結するため暗黙のトランザクションは使わない
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	}
}
