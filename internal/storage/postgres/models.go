package postgres

import (
	"time"

	"gorm.io/datatypes"
)

// bool 列には default タグを付けない。gormはゼロ値の false を省略して既定値を使うため。

type userRow struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type newspaperRow struct {
	ID          string    `gorm:"primaryKey"`
	Title       string    `gorm:"not null"`
	URL         string    `gorm:"column:url;not null"`
	CountryCode string    `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	Seq         int64     `gorm:"autoIncrement;uniqueIndex"`
}

func (newspaperRow) TableName() string { return "newspapers" }

type pushTokenRow struct {
	ID         string    `gorm:"primaryKey"`
	UserID     string    `gorm:"index;not null"`
	Token      string    `gorm:"uniqueIndex;not null"`
	DeviceType string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (pushTokenRow) TableName() string { return "push_tokens" }

type subscriptionRow struct {
	ID                  string                      `gorm:"primaryKey"`
	UserID              string                      `gorm:"uniqueIndex;not null"`
	CountryCodes        datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	NotifyNewNewspapers bool                        `gorm:"not null"`
	CreatedAt           time.Time                   `gorm:"not null"`
}

func (subscriptionRow) TableName() string { return "subscriptions" }

type notificationRow struct {
	ID     string            `gorm:"primaryKey"`
	UserID string            `gorm:"index:idx_notifications_user_sent_at,priority:1;not null"`
	Title  string            `gorm:"not null"`
	Body   string            `gorm:"not null"`
	Data   datatypes.JSONMap `gorm:"type:jsonb;not null"`
	SentAt time.Time         `gorm:"index:idx_notifications_user_sent_at,priority:2;not null"`
	Read   bool              `gorm:"column:is_read;not null"`
	// Seq は送信日時が同じ通知を保存順に並べるための連番。
	Seq int64 `gorm:"autoIncrement;uniqueIndex"`
}

func (notificationRow) TableName() string { return "notifications" }
