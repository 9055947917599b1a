package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/globalnews/navigator/internal/notification"
)

const subscriptionColumns = "id, user_id, country_codes, notify_new_newspapers, created_at"

// UpsertSubscription はユーザーの購読を作成するか、既存の購読の国コードを置き換える。
// 既存の購読のID・作成日時・通知フラグは維持する。
func (s *Store) UpsertSubscription(ctx context.Context, sub notification.Subscription) (notification.Subscription, error) {
	codes, err := encodeCodes(sub.CountryCodes)
	if err != nil {
		return notification.Subscription{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (id, user_id, country_codes, notify_new_newspapers, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET country_codes = excluded.country_codes
		RETURNING `+subscriptionColumns,
		sub.ID, sub.UserID, codes, sub.NotifyNewNewspapers, formatTime(sub.CreatedAt),
	)
	stored, err := scanSubscription(row)
	if err != nil {
		return notification.Subscription{}, fmt.Errorf("subscriptionsへの保存に失敗: %w", err)
	}
	return stored, nil
}

// FindSubscriptionByUser はユーザーの購読を返す。存在しない場合は nil を返す。
func (s *Store) FindSubscriptionByUser(ctx context.Context, userID string) (*notification.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = ?`,
		userID,
	)
	return optionalSubscription(scanSubscription(row))
}

// UpdateNotifyNewNewspapers は通知フラグを更新する。購読が無い場合は nil を返す。
func (s *Store) UpdateNotifyNewNewspapers(ctx context.Context, userID string, enabled bool) (*notification.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE subscriptions SET notify_new_newspapers = ? WHERE user_id = ? RETURNING `+subscriptionColumns,
		enabled, userID,
	)
	return optionalSubscription(scanSubscription(row))
}

// ListSubscribersByCountry は国コードを購読し、新聞登録通知を有効にしている購読を返す。
func (s *Store) ListSubscribersByCountry(ctx context.Context, countryCode string) ([]notification.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE notify_new_newspapers = 1
		  AND EXISTS (SELECT 1 FROM json_each(subscriptions.country_codes) WHERE json_each.value = ?)
		ORDER BY created_at, rowid`,
		countryCode,
	)
	if err != nil {
		return nil, fmt.Errorf("購読者の検索に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []notification.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func optionalSubscription(sub notification.Subscription, err error) (*notification.Subscription, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscriptionsの取得に失敗: %w", err)
	}
	return &sub, nil
}

func scanSubscription(sc scanner) (notification.Subscription, error) {
	var (
		sub       notification.Subscription
		codes     string
		createdAt string
	)
	if err := sc.Scan(&sub.ID, &sub.UserID, &codes, &sub.NotifyNewNewspapers, &createdAt); err != nil {
		return notification.Subscription{}, err
	}
	if err := json.Unmarshal([]byte(codes), &sub.CountryCodes); err != nil {
		return notification.Subscription{}, fmt.Errorf("country_codesの解析に失敗: %w", err)
	}
	if sub.CountryCodes == nil {
		sub.CountryCodes = []string{}
	}

	var err error
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return notification.Subscription{}, err
	}
	return sub, nil
}

func encodeCodes(codes []string) (string, error) {
	if codes == nil {
		codes = []string{}
	}
	b, err := json.Marshal(codes)
	if err != nil {
		return "", fmt.Errorf("country_codesのシリアライズに失敗: %w", err)
	}
	return string(b), nil
}
