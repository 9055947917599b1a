package notification

import "context"

// TokenRepository はプッシュトークンの永続化を担う。
type TokenRepository interface {
	// InsertPushTokenIfAbsent は同じトークン値のレコードが無ければ保存する。
	// 既に存在する場合は既存レコードをそのまま返す。
	InsertPushTokenIfAbsent(ctx context.Context, token PushToken) (PushToken, error)
	// ListPushTokensByUser はユーザーが登録したトークンを返す。
	ListPushTokensByUser(ctx context.Context, userID string) ([]PushToken, error)
}

// SubscriptionRepository は購読情報の永続化を担う。
type SubscriptionRepository interface {
	// UpsertSubscription はユーザーIDをキーに購読を作成または国コードを置き換える。
	// 既存レコードのID・作成日時・通知フラグは維持される。
	UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	// FindSubscriptionByUser はユーザーの購読を返す。存在しない場合は nil, nil を返す。
	FindSubscriptionByUser(ctx context.Context, userID string) (*Subscription, error)
	// UpdateNotifyNewNewspapers は通知フラグを更新する。購読が無い場合は nil, nil を返す。
	UpdateNotifyNewNewspapers(ctx context.Context, userID string, enabled bool) (*Subscription, error)
	// ListSubscribersByCountry は国コードを含み、通知フラグが有効な購読を返す。
	ListSubscribersByCountry(ctx context.Context, countryCode string) ([]Subscription, error)
}

// NotificationRepository は通知レコードの永続化を担う。
type NotificationRepository interface {
	// CreateNotification は通知を1件保存する。
	CreateNotification(ctx context.Context, n Notification) error
	// ListNotificationsByUser は送信日時の降順で最大limit件を返す。
	ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	// MarkNotificationRead は通知を既読にする。存在しないIDは無視する。
	MarkNotificationRead(ctx context.Context, id string) error
	// MarkAllNotificationsRead はユーザーの全通知を既読にする。
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	// CountUnreadNotifications はユーザーの未読通知数を返す。
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
}
