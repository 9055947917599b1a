package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TokenStore は端末のプッシュトークンを管理する。
type TokenStore struct {
	repo  TokenRepository
	now   func() time.Time
	newID func() string
}

// NewTokenStore は新しいTokenStoreを生成する。
func NewTokenStore(repo TokenRepository) *TokenStore {
	return &TokenStore{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// Register はトークンを登録する。
// 同じトークン値が登録済みの場合は既存のレコードを変更せずに返す。
func (s *TokenStore) Register(ctx context.Context, userID, token string, deviceType DeviceType) (PushToken, error) {
	pt, err := s.repo.InsertPushTokenIfAbsent(ctx, PushToken{
		ID:         s.newID(),
		UserID:     userID,
		Token:      token,
		DeviceType: deviceType,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return PushToken{}, fmt.Errorf("プッシュトークンの登録に失敗: %w", err)
	}
	return pt, nil
}

// ListByUser はユーザーが登録したトークンの一覧を返す。
func (s *TokenStore) ListByUser(ctx context.Context, userID string) ([]PushToken, error) {
	tokens, err := s.repo.ListPushTokensByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プッシュトークンの取得に失敗: %w", err)
	}
	return tokens, nil
}
