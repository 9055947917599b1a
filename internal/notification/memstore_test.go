package notification

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
)

// errStorage はテストで注入するストレージエラー。
var errStorage = errors.New("storage unavailable")

// memStore はテスト用のインメモリリポジトリ。
// TokenRepository / SubscriptionRepository / NotificationRepository を実装する。
type memStore struct {
	mu            sync.Mutex
	tokens        []PushToken
	subscriptions map[string]Subscription
	notifications []Notification

	// failCreateAt が1以上のとき、その回数目の CreateNotification を失敗させる。
	failCreateAt int
	createCalls  int
	// failAll が true の場合は全操作を失敗させる。
	failAll bool
	// failTokens が true の場合はトークン一覧の取得を失敗させる。
	failTokens bool
}

func newMemStore() *memStore {
	return &memStore{subscriptions: make(map[string]Subscription)}
}

var (
	_ TokenRepository        = (*memStore)(nil)
	_ SubscriptionRepository = (*memStore)(nil)
	_ NotificationRepository = (*memStore)(nil)
)

func (m *memStore) InsertPushTokenIfAbsent(_ context.Context, token PushToken) (PushToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return PushToken{}, errStorage
	}
	for _, t := range m.tokens {
		if t.Token == token.Token {
			return t, nil
		}
	}
	m.tokens = append(m.tokens, token)
	return token, nil
}

func (m *memStore) ListPushTokensByUser(_ context.Context, userID string) ([]PushToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failTokens {
		return nil, errStorage
	}
	var out []PushToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) UpsertSubscription(_ context.Context, sub Subscription) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return Subscription{}, errStorage
	}
	if existing, ok := m.subscriptions[sub.UserID]; ok {
		existing.CountryCodes = slices.Clone(sub.CountryCodes)
		m.subscriptions[sub.UserID] = existing
		return existing, nil
	}
	sub.CountryCodes = slices.Clone(sub.CountryCodes)
	m.subscriptions[sub.UserID] = sub
	return sub, nil
}

func (m *memStore) FindSubscriptionByUser(_ context.Context, userID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	sub, ok := m.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m *memStore) UpdateNotifyNewNewspapers(_ context.Context, userID string, enabled bool) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	sub, ok := m.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	sub.NotifyNewNewspapers = enabled
	m.subscriptions[userID] = sub
	return &sub, nil
}

func (m *memStore) ListSubscribersByCountry(_ context.Context, countryCode string) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	var out []Subscription
	for _, sub := range m.subscriptions {
		if sub.NotifyNewNewspapers && slices.Contains(sub.CountryCodes, countryCode) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) CreateNotification(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.failAll || (m.failCreateAt > 0 && m.createCalls == m.failCreateAt) {
		return errStorage
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memStore) ListNotificationsByUser(_ context.Context, userID string, limit int) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	var out []Notification
	// 挿入順の逆から走査し、同時刻の場合は後に作成したものを先にする
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorage
	}
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			m.notifications[i].Read = true
		}
	}
	return nil
}

func (m *memStore) MarkAllNotificationsRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorage
	}
	for i := range m.notifications {
		if m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
		}
	}
	return nil
}

func (m *memStore) CountUnreadNotifications(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return 0, errStorage
	}
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// notificationsFor はユーザー宛ての保存済み通知を挿入順で返す。
func (m *memStore) notificationsFor(userID string) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// recordingDeliverer は呼び出しを記録するテスト用 Deliverer。
type recordingDeliverer struct {
	mu      sync.Mutex
	enabled bool
	result  bool
	devices []string
}

func (d *recordingDeliverer) Enabled() bool { return d.enabled }

func (d *recordingDeliverer) SendToDevice(_ context.Context, token, _, _ string, _ map[string]string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = append(d.devices, token)
	return d.result
}

func (d *recordingDeliverer) SendToTopic(_ context.Context, _, _, _ string, _ map[string]string) bool {
	return d.result
}
