package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeNewspaper は新聞エンティティを表す。
	AggregateTypeNewspaper AggregateType = "Newspaper"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeNewspaperCreated は新聞が登録されたことを表す。
	TypeNewspaperCreated Type = "NewspaperCreated"
	// TypeNewspaperUpdated は新聞情報が更新されたことを表す。
	TypeNewspaperUpdated Type = "NewspaperUpdated"
	// TypeNewspaperDeleted は新聞が削除されたことを表す。
	TypeNewspaperDeleted Type = "NewspaperDeleted"
)

// Event はアプリケーション内で発行される不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// NewspaperCreatedData はNewspaperCreatedイベントのデータ。
// 通知レコーダーが購読者向けの通知を生成するのに必要な最小限の項目を持つ。
type NewspaperCreatedData struct {
	// ID は登録された新聞のID。
	ID string `json:"id"`
	// Title は新聞名。
	Title string `json:"title"`
	// CountryCode は新聞の発行国（ISO 3166-1 alpha-3）。
	CountryCode string `json:"country_code"`
}

// NewspaperUpdatedData はNewspaperUpdatedイベントのデータ。
type NewspaperUpdatedData struct {
	// Fields は更新されたフィールド名の一覧。
	Fields []string `json:"fields"`
}

// NewspaperDeletedData はNewspaperDeletedイベントのデータ。
type NewspaperDeletedData struct {
	// ID は削除された新聞のID。
	ID string `json:"id"`
}
