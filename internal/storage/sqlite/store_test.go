package sqlite

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globalnews/navigator/internal/auth"
	"github.com/globalnews/navigator/internal/newspaper"
	"github.com/globalnews/navigator/internal/notification"
	"github.com/globalnews/navigator/pkg/event"
)

// openTestStore はマイグレーション済みのインメモリストアを開く。
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.Context(), ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("マイグレーションを2回適用しても成功すること", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/navigator.db"
		first, err := Open(t.Context(), path, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := Open(t.Context(), path, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = second.Close() })
		assert.NoError(t, second.Ping(t.Context()))
	})
}

func TestStore_PushTokens(t *testing.T) {
	t.Parallel()

	t.Run("同じトークンの2回目の登録は既存行を返すこと", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)

		first, err := s.InsertPushTokenIfAbsent(t.Context(), notification.PushToken{
			ID: "t1", UserID: "u1", Token: "abc", DeviceType: notification.DeviceTypeWeb, CreatedAt: baseTime,
		})
		require.NoError(t, err)
		second, err := s.InsertPushTokenIfAbsent(t.Context(), notification.PushToken{
			ID: "t2", UserID: "u2", Token: "abc", DeviceType: notification.DeviceTypeIOS, CreatedAt: baseTime.Add(time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "t1", second.ID)
		assert.True(t, baseTime.Equal(second.CreatedAt))

		tokens, err := s.ListPushTokensByUser(t.Context(), "u1")
		require.NoError(t, err)
		assert.Len(t, tokens, 1)

		other, err := s.ListPushTokensByUser(t.Context(), "u2")
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("不明な端末種別は制約で拒否されること", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)

		_, err := s.InsertPushTokenIfAbsent(t.Context(), notification.PushToken{
			ID: "t1", UserID: "u1", Token: "abc", DeviceType: "desktop", CreatedAt: baseTime,
		})
		assert.Error(t, err)
	})
}

func TestStore_Subscriptions(t *testing.T) {
	t.Parallel()

	t.Run("再購読で国コードが置き換えられ、ID・作成日時・通知フラグは維持されること", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)

		first, err := s.UpsertSubscription(t.Context(), notification.Subscription{
			ID: "s1", UserID: "u1", CountryCodes: []string{"ESP", "FRA"}, NotifyNewNewspapers: true, CreatedAt: baseTime,
		})
		require.NoError(t, err)

		_, err = s.UpdateNotifyNewNewspapers(t.Context(), "u1", false)
		require.NoError(t, err)

		second, err := s.UpsertSubscription(t.Context(), notification.Subscription{
			ID: "s2", UserID: "u1", CountryCodes: []string{"JPN"}, NotifyNewNewspapers: true, CreatedAt: baseTime.Add(time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		assert.Equal(t, []string{"JPN"}, second.CountryCodes)
		assert.False(t, second.NotifyNewNewspapers)

		got, err := s.FindSubscriptionByUser(t.Context(), "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second, *got)
	})

	t.Run("購読が無い場合はnilを返すこと", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)

		got, err := s.FindSubscriptionByUser(t.Context(), "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)

		updated, err := s.UpdateNotifyNewNewspapers(t.Context(), "nobody", true)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("国コードを含み通知が有効な購読だけが返ること", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)

		for i, codes := range [][]string{{"ESP"}, {"ESP", "FRA"}, {"FRA"}, {"ESPANA"}, {}} {
			_, err := s.UpsertSubscription(t.Context(), notification.Subscription{
				ID:                  fmt.Sprintf("s%d", i),
				UserID:              fmt.Sprintf("u%d", i),
				CountryCodes:        codes,
				NotifyNewNewspapers: true,
				CreatedAt:           baseTime.Add(time.Duration(i) * time.Second),
			})
			require.NoError(t, err)
		}
		_, err := s.UpsertSubscription(t.Context(), notification.Subscription{
			ID: "s9", UserID: "u9", CountryCodes: []string{"ESP"}, NotifyNewNewspapers: false, CreatedAt: baseTime,
		})
		require.NoError(t, err)

		subs, err := s.ListSubscribersByCountry(t.Context(), "ESP")
		require.NoError(t, err)

		var users []string
		for _, sub := range subs {
			users = append(users, sub.UserID)
		}
		assert.Equal(t, []string{"u0", "u1"}, users)
	})
}

func TestStore_Notifications(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, s *Store, userID string, n int, sameTime bool) []notification.Notification {
		t.Helper()
		out := make([]notification.Notification, 0, n)
		for i := range n {
			sentAt := baseTime.Add(time.Duration(i) * time.Second)
			if sameTime {
				sentAt = baseTime
			}
			notif := notification.Notification{
				ID:     fmt.Sprintf("%s-n%d", userID, i),
				UserID: userID,
				Title:  "New newspaper in ESP",
				Body:   "'El Día' was added to the newspapers of ESP",
				Data:   map[string]any{"type": "new_newspaper", "country_code": "ESP", "newspaper_id": "p1"},
				SentAt: sentAt,
			}
			require.NoError(t, s.CreateNotification(t.Context(), notif))
			out = append(out, notif)
		}
		return out
	}

	t.Run("limit件を送信日時の降順で返すこと", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		seeded := seed(t, s, "u1", 5, false)
		seed(t, s, "u2", 2, false)

		got, err := s.ListNotificationsByUser(t.Context(), "u1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, seeded[4].ID, got[0].ID)
		assert.Equal(t, seeded[3].ID, got[1].ID)
		assert.Equal(t, seeded[4].Data, got[0].Data)
		assert.True(t, seeded[4].SentAt.Equal(got[0].SentAt))
		assert.False(t, got[0].Read)
	})

	t.Run("送信日時が同じ場合は後に保存した通知が先になること", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		seeded := seed(t, s, "u1", 3, true)

		got, err := s.ListNotificationsByUser(t.Context(), "u1", 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{seeded[2].ID, seeded[1].ID, seeded[0].ID}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("既読化と未読件数", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		seeded := seed(t, s, "u1", 3, false)
		seed(t, s, "u2", 2, false)

		count, err := s.CountUnreadNotifications(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.NoError(t, s.MarkNotificationRead(t.Context(), seeded[0].ID))
		require.NoError(t, s.MarkNotificationRead(t.Context(), seeded[0].ID))
		require.NoError(t, s.MarkNotificationRead(t.Context(), "missing"))

		count, err = s.CountUnreadNotifications(t.Context(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, s.MarkAllNotificationsRead(t.Context(), "u1"))
		count, err = s.CountUnreadNotifications(t.Context(), "u1")
		require.NoError(t, err)
		assert.Zero(t, count)

		other, err := s.CountUnreadNotifications(t.Context(), "u2")
		require.NoError(t, err)
		assert.Equal(t, 2, other)
	})
}

func TestStore_Users(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	missing, err := s.FindUserByUsername(t.Context(), "admin")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := s.InsertUserIfAbsent(t.Context(), auth.User{ID: "u1", Username: "admin", PasswordHash: "h1", CreatedAt: baseTime})
	require.NoError(t, err)
	second, err := s.InsertUserIfAbsent(t.Context(), auth.User{ID: "u2", Username: "admin", PasswordHash: "h2", CreatedAt: baseTime})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "h1", second.PasswordHash)

	found, err := s.FindUserByUsername(t.Context(), "admin")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "u1", found.ID)
}

func TestStore_Newspapers(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	for i, n := range []newspaper.Newspaper{
		{ID: "p1", Title: "El País", URL: "https://elpais.com", CountryCode: "ESP"},
		{ID: "p2", Title: "Le Monde", URL: "https://lemonde.fr", CountryCode: "FRA"},
		{ID: "p3", Title: "El Día", URL: "https://eldia.es", CountryCode: "ESP"},
	} {
		n.CreatedAt = baseTime.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateNewspaper(t.Context(), n))
	}

	all, err := s.ListNewspapers(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p1", all[0].ID)

	esp, err := s.ListNewspapersByCountry(t.Context(), "ESP")
	require.NoError(t, err)
	assert.Len(t, esp, 2)

	countries, err := s.CountNewspapersByCountry(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []newspaper.CountryInfo{
		{CountryCode: "ESP", NewspaperCount: 2},
		{CountryCode: "FRA", NewspaperCount: 1},
	}, countries)

	title := "El País (edición América)"
	updated, err := s.UpdateNewspaper(t.Context(), "p1", newspaper.Patch{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "https://elpais.com", updated.URL)
	assert.Equal(t, "ESP", updated.CountryCode)

	missing, err := s.UpdateNewspaper(t.Context(), "nope", newspaper.Patch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := s.DeleteNewspaper(t.Context(), "p2")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteNewspaper(t.Context(), "p2")
	require.NoError(t, err)
	assert.False(t, deleted)

	found, err := s.FindNewspaper(t.Context(), "p2")
	require.NoError(t, err)
	assert.Nil(t, found)
}

// TestStore_RecorderFlow はSQLiteストア上で購読から通知の既読化までを通して検証する。
func TestStore_RecorderFlow(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	subs := notification.NewSubscriptionStore(s)
	reader := notification.NewReader(s)
	recorder := notification.NewRecorder(s, s, s, nil, zerolog.Nop())

	for _, userID := range []string{"u1", "u2", "u3"} {
		_, err := subs.Subscribe(t.Context(), userID, []string{"esp"})
		require.NoError(t, err)
	}
	_, err := subs.Subscribe(t.Context(), "u4", []string{"FRA"})
	require.NoError(t, err)

	result, err := recorder.OnNewspaperCreated(t.Context(), event.NewspaperCreatedData{
		ID: "p1", Title: "El Día", CountryCode: "ESP",
	})
	require.NoError(t, err)
	assert.Equal(t, notification.RecordResult{NotificationsSent: 3, CountryCode: "ESP"}, result)

	list, err := reader.List(t.Context(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New newspaper in ESP", list[0].Title)
	assert.Equal(t, "'El Día' was added to the newspapers of ESP", list[0].Body)
	assert.Equal(t, "p1", list[0].Data["newspaper_id"])

	require.NoError(t, reader.MarkRead(t.Context(), list[0].ID))
	count, err := reader.UnreadCount(t.Context(), "u1")
	require.NoError(t, err)
	assert.Zero(t, count)

	none, err := reader.List(t.Context(), "u4", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
