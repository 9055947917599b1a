package notification

import (
	"context"
	"fmt"
)

const (
	// DefaultListLimit は一覧取得件数の既定値。
	DefaultListLimit = 50
	// MaxListLimit は一覧取得件数の上限。
	MaxListLimit = 200
)

// Reader はユーザー向けの通知の参照と既読管理を行う。
// カーソル等の状態は持たず、呼び出しごとにストアを参照する。
type Reader struct {
	repo NotificationRepository
}

// NewReader は新しいReaderを生成する。
func NewReader(repo NotificationRepository) *Reader {
	return &Reader{repo: repo}
}

// List はユーザーの通知を送信日時の降順で最大limit件返す。
// limit が0以下なら DefaultListLimit、MaxListLimit を超える場合は MaxListLimit を使う。
func (r *Reader) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	notifications, err := r.repo.ListNotificationsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	return notifications, nil
}

// MarkRead は通知を既読にする。存在しないIDの場合も何もせず成功する。
func (r *Reader) MarkRead(ctx context.Context, notificationID string) error {
	if err := r.repo.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("通知の既読処理に失敗: %w", err)
	}
	return nil
}

// MarkAllRead はユーザーの全通知を既読にする。
func (r *Reader) MarkAllRead(ctx context.Context, userID string) error {
	if err := r.repo.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("全通知の既読処理に失敗: %w", err)
	}
	return nil
}

// UnreadCount はユーザーの未読通知数を返す。
func (r *Reader) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := r.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("未読件数の取得に失敗: %w", err)
	}
	return count, nil
}
