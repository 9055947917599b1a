package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/pkg/event"
)

// Recorder は新聞登録イベントを受け取り、購読者ごとに通知レコードを保存する。
type Recorder struct {
	subscriptions SubscriptionRepository
	notifications NotificationRepository
	tokens        TokenRepository
	deliverer     Deliverer
	logger        zerolog.Logger
	now           func() time.Time
	newID         func() string
}

// NewRecorder は新しいRecorderを生成する。
// deliverer が nil の場合、配信ステップは行わない。
func NewRecorder(
	subscriptions SubscriptionRepository,
	notifications NotificationRepository,
	tokens TokenRepository,
	deliverer Deliverer,
	logger zerolog.Logger,
) *Recorder {
	return &Recorder{
		subscriptions: subscriptions,
		notifications: notifications,
		tokens:        tokens,
		deliverer:     deliverer,
		logger:        logger.With().Str("component", "recorder").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.New().String() },
	}
}

// OnNewspaperCreated は新聞の発行国を購読しているユーザーごとに通知を1件ずつ保存する。
//
// 保存は購読者ごとに逐次行い、途中で保存に失敗した場合は残りを中断してエラーを返す。
// それまでに保存した通知は取り消さない。戻り値の件数はエラー時も保存済みの件数を表す。
func (r *Recorder) OnNewspaperCreated(ctx context.Context, newspaper event.NewspaperCreatedData) (RecordResult, error) {
	result := RecordResult{CountryCode: newspaper.CountryCode}

	subscribers, err := r.subscriptions.ListSubscribersByCountry(ctx, newspaper.CountryCode)
	if err != nil {
		return result, fmt.Errorf("購読者の取得に失敗: %w", err)
	}

	for _, sub := range subscribers {
		n := r.buildNotification(sub.UserID, newspaper)
		if err := r.notifications.CreateNotification(ctx, n); err != nil {
			return result, fmt.Errorf("ユーザー %s への通知の保存に失敗: %w", sub.UserID, err)
		}
		result.NotificationsSent++

		r.logger.Info().
			Str("user_id", sub.UserID).
			Str("notification_id", n.ID).
			Str("title", n.Title).
			Msg("通知を作成しました")

		r.deliver(ctx, n)
	}

	return result, nil
}

// HandleEvent は新聞イベントを受け取り、NewspaperCreated の場合に通知を記録する。
// それ以外のイベントは無視する。
func (r *Recorder) HandleEvent(ctx context.Context, e *event.Event) error {
	if e == nil || e.EventType != event.TypeNewspaperCreated {
		return nil
	}

	data, err := event.DecodeData[event.NewspaperCreatedData](e)
	if err != nil {
		return err
	}

	result, err := r.OnNewspaperCreated(ctx, *data)
	if err != nil {
		r.logger.Error().Err(err).
			Str("event_id", e.ID).
			Int("notifications_sent", result.NotificationsSent).
			Msg("通知の記録が途中で失敗しました")
		return err
	}

	r.logger.Info().
		Str("event_id", e.ID).
		Str("newspaper_id", data.ID).
		Str("country_code", result.CountryCode).
		Int("notifications_sent", result.NotificationsSent).
		Msg("新聞登録の通知を記録しました")
	return nil
}

func (r *Recorder) buildNotification(userID string, newspaper event.NewspaperCreatedData) Notification {
	return Notification{
		ID:     r.newID(),
		UserID: userID,
		Title:  fmt.Sprintf("New newspaper in %s", newspaper.CountryCode),
		Body:   fmt.Sprintf("'%s' was added to the newspapers of %s", newspaper.Title, newspaper.CountryCode),
		Data: map[string]any{
			"type":         NotificationTypeNewNewspaper,
			"country_code": newspaper.CountryCode,
			"newspaper_id": newspaper.ID,
		},
		SentAt: r.now(),
		Read:   false,
	}
}

// deliver は保存済みの通知を購読者の端末へ送る。
// 配信の失敗は記録済みの通知に影響させず、ログに残すだけにする。
func (r *Recorder) deliver(ctx context.Context, n Notification) {
	if r.deliverer == nil || !r.deliverer.Enabled() || r.tokens == nil {
		return
	}

	tokens, err := r.tokens.ListPushTokensByUser(ctx, n.UserID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", n.UserID).Msg("プッシュトークンの取得に失敗したため配信をスキップします")
		return
	}

	data := make(map[string]string, len(n.Data))
	for k, v := range n.Data {
		data[k] = fmt.Sprint(v)
	}

	for _, t := range tokens {
		if !r.deliverer.SendToDevice(ctx, t.Token, n.Title, n.Body, data) {
			r.logger.Warn().Str("user_id", n.UserID).Str("device_type", string(t.DeviceType)).Msg("端末への配信に失敗しました")
		}
	}
}
