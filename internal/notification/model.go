package notification

import "time"

// DeviceType はプッシュトークンを発行した端末の種類を表す。
type DeviceType string

const (
	// DeviceTypeWeb はブラウザ（Web Push）を表す。
	DeviceTypeWeb DeviceType = "web"
	// DeviceTypeIOS はiOS端末を表す。
	DeviceTypeIOS DeviceType = "ios"
	// DeviceTypeAndroid はAndroid端末を表す。
	DeviceTypeAndroid DeviceType = "android"
)

// NotificationTypeNewNewspaper は新聞登録通知の data.type の値。
const NotificationTypeNewNewspaper = "new_newspaper"

// PushToken は端末ごとのプッシュ通知トークン。
// Token の値はストア全体で一意。
type PushToken struct {
	// ID はレコードの一意識別子（UUID）。
	ID string `json:"id"`
	// UserID はトークンを登録したユーザーのID。
	UserID string `json:"user_id"`
	// Token は端末固有のプッシュトークン。
	Token string `json:"token"`
	// DeviceType は端末の種類。
	DeviceType DeviceType `json:"device_type"`
	// CreatedAt は登録日時。
	CreatedAt time.Time `json:"created_at"`
}

// Subscription はユーザーが購読している国の集合。
// ユーザーごとに高々1件だけ存在する。
type Subscription struct {
	// ID はレコードの一意識別子（UUID）。
	ID string `json:"id"`
	// UserID は購読者のユーザーID。
	UserID string `json:"user_id"`
	// CountryCodes は購読している国コード（ISO 3166-1 alpha-3）の集合。順序に意味はない。
	CountryCodes []string `json:"country_codes"`
	// NotifyNewNewspapers は新聞登録時に通知を受け取るかどうか。
	NotifyNewNewspapers bool `json:"notify_new_newspapers"`
	// CreatedAt は作成日時。
	CreatedAt time.Time `json:"created_at"`
}

// Notification はユーザーに記録された通知。
// Read 以外のフィールドは作成後に変更されない。
type Notification struct {
	// ID は通知の一意識別子（UUID）。
	ID string `json:"id"`
	// UserID は通知先のユーザーID。
	UserID string `json:"user_id"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知の本文。
	Body string `json:"body"`
	// Data はイベントのメタデータ。
	Data map[string]any `json:"data"`
	// SentAt は通知の作成日時。
	SentAt time.Time `json:"sent_at"`
	// Read は既読状態。false から true への遷移のみ許される。
	Read bool `json:"read"`
}

// RecordResult は新聞登録イベント1件に対する通知記録の結果。
type RecordResult struct {
	// NotificationsSent は保存できた通知の件数。
	NotificationsSent int `json:"notifications_sent"`
	// CountryCode は対象の国コード。
	CountryCode string `json:"country_code"`
}
