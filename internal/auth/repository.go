package auth

import "context"

// UserRepository はユーザーの永続化を担う。
type UserRepository interface {
	// FindUserByUsername はユーザー名でユーザーを検索する。存在しない場合は nil を返す。
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	// InsertUserIfAbsent はユーザーを登録する。同名のユーザーが既にいる場合は既存のレコードを返す。
	InsertUserIfAbsent(ctx context.Context, user User) (User, error)
}
