// Package sqlite は modernc.org/sqlite を使った永続化層を提供する。
//
// 国コードの集合はJSON配列として保存し、json_each で所属を判定する。
// 日時は固定幅のUTC文字列で保存するため、文字列の大小が時刻の前後と一致する。
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/globalnews/navigator/internal/auth"
	"github.com/globalnews/navigator/internal/newspaper"
	"github.com/globalnews/navigator/internal/notification"
	"github.com/globalnews/navigator/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout は日時の保存形式。
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store は全リポジトリを実装するSQLiteストア。
type Store struct {
	db *sql.DB
}

var (
	_ notification.TokenRepository        = (*Store)(nil)
	_ notification.SubscriptionRepository = (*Store)(nil)
	_ notification.NotificationRepository = (*Store)(nil)
	_ auth.UserRepository                 = (*Store)(nil)
	_ newspaper.Repository                = (*Store)(nil)
)

// Open はSQLiteデータベースを開き、マイグレーションを適用する。
// path に ":memory:" を渡すとインメモリデータベースになる。
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// SQLiteは書き込みが直列化されるため接続は1本に絞る。インメモリDBも接続ごとに別物になる。
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベース接続の確認に失敗: %w", err)
	}

	if err := migration.Run(ctx, db, migrations, "migrations", logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	return New(db), nil
}

// New は既存の接続からStoreを生成する。スキーマは適用済みである必要がある。
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping はデータベースに到達できるか確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日時の解析に失敗: %w", err)
	}
	return t, nil
}

// scanner は *sql.Row と *sql.Rows の共通部分。
type scanner interface {
	Scan(dest ...any) error
}
