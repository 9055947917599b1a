package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/globalnews/navigator/internal/notification"
)

// CreateNotification は通知を1件保存する。
func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) error {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("通知データのシリアライズに失敗: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body, data, sent_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Body, string(encoded), formatTime(n.SentAt), n.Read,
	)
	if err != nil {
		return fmt.Errorf("notificationsへの保存に失敗: %w", err)
	}
	return nil
}

// ListNotificationsByUser はユーザーの通知を送信日時の降順で最大limit件返す。
// 送信日時が同じ場合は後から保存したものを先にする。
func (s *Store) ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, body, data, sent_at, is_read
		FROM notifications
		WHERE user_id = ?
		ORDER BY sent_at DESC, rowid DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("notificationsの検索に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []notification.Notification
	for rows.Next() {
		var (
			n      notification.Notification
			data   string
			sentAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &data, &sentAt, &n.Read); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &n.Data); err != nil {
			return nil, fmt.Errorf("通知データの解析に失敗: %w", err)
		}
		if n.SentAt, err = parseTime(sentAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead は通知を既読にする。該当する行が無くてもエラーにしない。
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("notificationsの更新に失敗: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead はユーザーの未読通知を全て既読にする。
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID,
	); err != nil {
		return fmt.Errorf("notificationsの更新に失敗: %w", err)
	}
	return nil
}

// CountUnreadNotifications はユーザーの未読通知数を返す。
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("未読件数の取得に失敗: %w", err)
	}
	return count, nil
}
