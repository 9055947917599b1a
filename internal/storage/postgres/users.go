package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/globalnews/navigator/internal/auth"
)

// FindUserByUsername はユーザー名でユーザーを検索する。存在しない場合は nil を返す。
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("usersの取得に失敗: %w", err)
	}
	u := row.toModel()
	return &u, nil
}

// InsertUserIfAbsent はユーザーを登録する。同名のユーザーがいる場合は既存の行を返す。
func (s *Store) InsertUserIfAbsent(ctx context.Context, u auth.User) (auth.User, error) {
	row := userRow{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return auth.User{}, fmt.Errorf("usersへの登録に失敗: %w", err)
	}

	stored, err := s.FindUserByUsername(ctx, u.Username)
	if err != nil {
		return auth.User{}, err
	}
	if stored == nil {
		return auth.User{}, errors.New("登録したユーザーが見つかりません")
	}
	return *stored, nil
}

func (r userRow) toModel() auth.User {
	return auth.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
