package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Deliverer は外部のプッシュ配信プロバイダーとの境界。
// 戻り値の bool は参考情報であり、配信の成功を保証しない。
type Deliverer interface {
	// Enabled は配信用の認証情報が設定されているかを返す。
	Enabled() bool
	// SendToDevice は端末トークン宛てに通知を送る。
	SendToDevice(ctx context.Context, token, title, body string, data map[string]string) bool
	// SendToTopic はトピック（例: 国コード）宛てに通知を送る。
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) bool
}

// LogDeliverer は実際の送信を行わずログ出力だけを行う Deliverer。
// 有効かどうかは生成時に一度だけ決まる。
type LogDeliverer struct {
	enabled bool
	logger  zerolog.Logger
}

var _ Deliverer = (*LogDeliverer)(nil)

// NewLogDeliverer は新しいLogDelivererを生成する。
// serverKey が空の場合は無効な状態になる。
func NewLogDeliverer(serverKey string, logger zerolog.Logger) *LogDeliverer {
	return &LogDeliverer{
		enabled: serverKey != "",
		logger:  logger.With().Str("component", "delivery").Logger(),
	}
}

// Enabled は配信用の認証情報が設定されているかを返す。
func (d *LogDeliverer) Enabled() bool {
	return d.enabled
}

// SendToDevice は端末トークン宛ての送信をログに記録する。
func (d *LogDeliverer) SendToDevice(_ context.Context, token, title, _ string, _ map[string]string) bool {
	if !d.enabled {
		d.logger.Warn().Msg("プッシュ配信が設定されていないため通知を送信しませんでした")
		return false
	}
	d.logger.Info().Str("token", maskToken(token)).Str("title", title).Msg("端末に通知を送信しました")
	return true
}

// SendToTopic はトピック宛ての送信をログに記録する。
func (d *LogDeliverer) SendToTopic(_ context.Context, topic, title, _ string, _ map[string]string) bool {
	if !d.enabled {
		d.logger.Warn().Msg("プッシュ配信が設定されていないため通知を送信しませんでした")
		return false
	}
	d.logger.Info().Str("topic", topic).Str("title", title).Msg("トピックに通知を送信しました")
	return true
}

// maskToken はログに出力するためトークンの先頭だけを残す。
func maskToken(token string) string {
	const visible = 12
	if len(token) <= visible {
		return token
	}
	return token[:visible] + "..."
}
