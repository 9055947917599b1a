package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/globalnews/navigator/internal/auth"
)

const userColumns = "id, username, password_hash, created_at"

// FindUserByUsername はユーザー名でユーザーを検索する。存在しない場合は nil を返す。
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usersの取得に失敗: %w", err)
	}
	return &u, nil
}

// InsertUserIfAbsent はユーザーを登録する。同名のユーザーがいる場合は既存の行を返す。
func (s *Store) InsertUserIfAbsent(ctx context.Context, u auth.User) (auth.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET username = excluded.username
		RETURNING `+userColumns,
		u.ID, u.Username, u.PasswordHash, formatTime(u.CreatedAt),
	)
	stored, err := scanUser(row)
	if err != nil {
		return auth.User{}, fmt.Errorf("usersへの登録に失敗: %w", err)
	}
	return stored, nil
}

func scanUser(sc scanner) (auth.User, error) {
	var (
		u         auth.User
		createdAt string
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		return auth.User{}, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return auth.User{}, err
	}
	return u, nil
}
