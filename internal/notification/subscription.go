package notification

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStore はユーザーごとの国別購読を管理する。
type SubscriptionStore struct {
	repo  SubscriptionRepository
	now   func() time.Time
	newID func() string
}

// NewSubscriptionStore は新しいSubscriptionStoreを生成する。
func NewSubscriptionStore(repo SubscriptionRepository) *SubscriptionStore {
	return &SubscriptionStore{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// Subscribe はユーザーの購読国を countryCodes で置き換える。
// 購読が無ければ通知フラグを有効にして新規作成する。既存の国コードとはマージしない。
func (s *SubscriptionStore) Subscribe(ctx context.Context, userID string, countryCodes []string) (Subscription, error) {
	sub, err := s.repo.UpsertSubscription(ctx, Subscription{
		ID:                  s.newID(),
		UserID:              userID,
		CountryCodes:        NormalizeCountryCodes(countryCodes),
		NotifyNewNewspapers: true,
		CreatedAt:           s.now(),
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("購読の保存に失敗: %w", err)
	}
	return sub, nil
}

// Get はユーザーの購読を返す。購読が無い場合は nil を返す。
func (s *SubscriptionStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.repo.FindSubscriptionByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("購読の取得に失敗: %w", err)
	}
	return sub, nil
}

// SetNotifyNewNewspapers は新聞登録通知の受信可否を切り替える。
// 購読が無い場合は nil を返す。
func (s *SubscriptionStore) SetNotifyNewNewspapers(ctx context.Context, userID string, enabled bool) (*Subscription, error) {
	sub, err := s.repo.UpdateNotifyNewNewspapers(ctx, userID, enabled)
	if err != nil {
		return nil, fmt.Errorf("通知設定の更新に失敗: %w", err)
	}
	return sub, nil
}

// NormalizeCountryCodes は国コードを集合として正規化する。
// 前後の空白を除去して大文字化し、空文字列と重複を取り除いて昇順に並べる。
func NormalizeCountryCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
