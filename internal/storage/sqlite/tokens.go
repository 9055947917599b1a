package sqlite

import (
	"context"
	"fmt"

	"github.com/globalnews/navigator/internal/notification"
)

const pushTokenColumns = "id, user_id, token, device_type, created_at"

// InsertPushTokenIfAbsent はトークンを登録する。登録済みのトークンは既存の行を返す。
// 衝突時の更新は同値の代入で、RETURNING で既存行を得るためのもの。
func (s *Store) InsertPushTokenIfAbsent(ctx context.Context, t notification.PushToken) (notification.PushToken, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO push_tokens (id, user_id, token, device_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET token = excluded.token
		RETURNING `+pushTokenColumns,
		t.ID, t.UserID, t.Token, string(t.DeviceType), formatTime(t.CreatedAt),
	)
	stored, err := scanPushToken(row)
	if err != nil {
		return notification.PushToken{}, fmt.Errorf("push_tokensへの登録に失敗: %w", err)
	}
	return stored, nil
}

// ListPushTokensByUser はユーザーのトークンを登録順に返す。
func (s *Store) ListPushTokensByUser(ctx context.Context, userID string) ([]notification.PushToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pushTokenColumns+` FROM push_tokens WHERE user_id = ? ORDER BY created_at, rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("push_tokensの検索に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tokens []notification.PushToken
	for rows.Next() {
		t, err := scanPushToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func scanPushToken(sc scanner) (notification.PushToken, error) {
	var (
		t          notification.PushToken
		deviceType string
		createdAt  string
	)
	if err := sc.Scan(&t.ID, &t.UserID, &t.Token, &deviceType, &createdAt); err != nil {
		return notification.PushToken{}, err
	}
	t.DeviceType = notification.DeviceType(deviceType)

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return notification.PushToken{}, err
	}
	return t, nil
}
