package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/globalnews/navigator/internal/notification"
)

// InsertPushTokenIfAbsent はトークンを登録する。登録済みのトークンは既存の行を返す。
func (s *Store) InsertPushTokenIfAbsent(ctx context.Context, t notification.PushToken) (notification.PushToken, error) {
	db := s.db.WithContext(ctx)

	row := pushTokenRow{
		ID:         t.ID,
		UserID:     t.UserID,
		Token:      t.Token,
		DeviceType: string(t.DeviceType),
		CreatedAt:  t.CreatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return notification.PushToken{}, fmt.Errorf("push_tokensへの登録に失敗: %w", err)
	}

	var stored pushTokenRow
	if err := db.Where("token = ?", t.Token).First(&stored).Error; err != nil {
		return notification.PushToken{}, fmt.Errorf("push_tokensの取得に失敗: %w", err)
	}
	return stored.toModel(), nil
}

// ListPushTokensByUser はユーザーのトークンを登録順に返す。
func (s *Store) ListPushTokensByUser(ctx context.Context, userID string) ([]notification.PushToken, error) {
	var rows []pushTokenRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("push_tokensの検索に失敗: %w", err)
	}

	tokens := make([]notification.PushToken, 0, len(rows))
	for _, r := range rows {
		tokens = append(tokens, r.toModel())
	}
	return tokens, nil
}

// UpsertSubscription はユーザーの購読を作成するか、既存の購読の国コードを置き換える。
func (s *Store) UpsertSubscription(ctx context.Context, sub notification.Subscription) (notification.Subscription, error) {
	db := s.db.WithContext(ctx)

	row := subscriptionRow{
		ID:                  sub.ID,
		UserID:              sub.UserID,
		CountryCodes:        datatypes.NewJSONSlice(nonNilCodes(sub.CountryCodes)),
		NotifyNewNewspapers: sub.NotifyNewNewspapers,
		CreatedAt:           sub.CreatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"country_codes"}),
	}).Create(&row).Error; err != nil {
		return notification.Subscription{}, fmt.Errorf("subscriptionsへの保存に失敗: %w", err)
	}

	stored, err := s.FindSubscriptionByUser(ctx, sub.UserID)
	if err != nil {
		return notification.Subscription{}, err
	}
	if stored == nil {
		return notification.Subscription{}, errors.New("保存した購読が見つかりません")
	}
	return *stored, nil
}

// FindSubscriptionByUser はユーザーの購読を返す。存在しない場合は nil を返す。
func (s *Store) FindSubscriptionByUser(ctx context.Context, userID string) (*notification.Subscription, error) {
	var row subscriptionRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscriptionsの取得に失敗: %w", err)
	}
	sub := row.toModel()
	return &sub, nil
}

// UpdateNotifyNewNewspapers は通知フラグを更新する。購読が無い場合は nil を返す。
func (s *Store) UpdateNotifyNewNewspapers(ctx context.Context, userID string, enabled bool) (*notification.Subscription, error) {
	res := s.db.WithContext(ctx).
		Model(&subscriptionRow{}).
		Where("user_id = ?", userID).
		Update("notify_new_newspapers", enabled)
	if res.Error != nil {
		return nil, fmt.Errorf("subscriptionsの更新に失敗: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindSubscriptionByUser(ctx, userID)
}

// ListSubscribersByCountry は国コードを購読し、新聞登録通知を有効にしている購読を返す。
func (s *Store) ListSubscribersByCountry(ctx context.Context, countryCode string) ([]notification.Subscription, error) {
	contains, err := json.Marshal([]string{countryCode})
	if err != nil {
		return nil, fmt.Errorf("検索条件のシリアライズに失敗: %w", err)
	}

	var rows []subscriptionRow
	if err := s.db.WithContext(ctx).
		Where("notify_new_newspapers = ?", true).
		Where("country_codes @> ?::jsonb", string(contains)).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("購読者の検索に失敗: %w", err)
	}

	subs := make([]notification.Subscription, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toModel())
	}
	return subs, nil
}

// CreateNotification は通知を1件保存する。
func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) error {
	data := datatypes.JSONMap(n.Data)
	if data == nil {
		data = datatypes.JSONMap{}
	}
	row := notificationRow{
		ID:     n.ID,
		UserID: n.UserID,
		Title:  n.Title,
		Body:   n.Body,
		Data:   data,
		SentAt: n.SentAt,
		Read:   n.Read,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("notificationsへの保存に失敗: %w", err)
	}
	return nil
}

// ListNotificationsByUser はユーザーの通知を送信日時の降順で最大limit件返す。
func (s *Store) ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	var rows []notificationRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC, seq DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notificationsの検索に失敗: %w", err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, notification.Notification{
			ID:     r.ID,
			UserID: r.UserID,
			Title:  r.Title,
			Body:   r.Body,
			Data:   map[string]any(r.Data),
			SentAt: r.SentAt.UTC(),
			Read:   r.Read,
		})
	}
	return out, nil
}

// MarkNotificationRead は通知を既読にする。該当する行が無くてもエラーにしない。
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).
		Model(&notificationRow{}).
		Where("id = ?", id).
		Update("is_read", true).Error; err != nil {
		return fmt.Errorf("notificationsの更新に失敗: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead はユーザーの未読通知を全て既読にする。
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).
		Model(&notificationRow{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return fmt.Errorf("notificationsの更新に失敗: %w", err)
	}
	return nil
}

// CountUnreadNotifications はユーザーの未読通知数を返す。
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&notificationRow{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("未読件数の取得に失敗: %w", err)
	}
	return int(count), nil
}

func (r pushTokenRow) toModel() notification.PushToken {
	return notification.PushToken{
		ID:         r.ID,
		UserID:     r.UserID,
		Token:      r.Token,
		DeviceType: notification.DeviceType(r.DeviceType),
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func (r subscriptionRow) toModel() notification.Subscription {
	return notification.Subscription{
		ID:                  r.ID,
		UserID:              r.UserID,
		CountryCodes:        nonNilCodes([]string(r.CountryCodes)),
		NotifyNewNewspapers: r.NotifyNewNewspapers,
		CreatedAt:           r.CreatedAt.UTC(),
	}
}

func nonNilCodes(codes []string) []string {
	if codes == nil {
		return []string{}
	}
	return codes
}
