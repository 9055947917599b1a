package auth

import "time"

// User はログイン可能な管理者ユーザー。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Token はログイン成功時に返すアクセストークン。
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
