package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/globalnews/navigator/pkg/middleware"
)

// ErrInvalidCredentials はユーザー名またはパスワードが誤っていることを表す。
var ErrInvalidCredentials = errors.New("ユーザー名またはパスワードが正しくありません")

// tokenTypeBearer はトークン種別として返す値。
const tokenTypeBearer = "bearer"

// Options はServiceの設定。
type Options struct {
	// Secret はJWTの署名鍵。
	Secret string
	// TokenTTL はアクセストークンの有効期間。
	TokenTTL time.Duration
	// AdminUsername は初期管理者のユーザー名。
	AdminUsername string
	// AdminPassword は初期管理者のパスワード。
	AdminPassword string
}

// Service はログイン処理を行う。
type Service struct {
	users      UserRepository
	opts       Options
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// NewService は新しいServiceを生成する。
func NewService(users UserRepository, opts Options) *Service {
	return &Service{
		users:      users,
		opts:       opts,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// Login はユーザー名とパスワードを検証し、アクセストークンを発行する。
// ユーザーが存在せず、資格情報が初期管理者と一致する場合は管理者を作成してからトークンを発行する。
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return Token{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if user == nil {
		if !s.isBootstrapAdmin(username, password) {
			return Token{}, ErrInvalidCredentials
		}
		created, err := s.createAdmin(ctx, username, password)
		if err != nil {
			return Token{}, err
		}
		user = &created
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	return s.issue(*user)
}

func (s *Service) isBootstrapAdmin(username, password string) bool {
	return s.opts.AdminUsername != "" &&
		username == s.opts.AdminUsername &&
		password == s.opts.AdminPassword
}

// createAdmin は初期管理者を登録する。同時に別のリクエストが登録した場合はそのレコードを返す。
func (s *Service) createAdmin(ctx context.Context, username, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	user, err := s.users.InsertUserIfAbsent(ctx, User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return User{}, fmt.Errorf("初期管理者の作成に失敗: %w", err)
	}
	return user, nil
}

func (s *Service) issue(user User) (Token, error) {
	signed, err := middleware.GenerateJWT(s.opts.Secret, user.ID, user.Username, s.opts.TokenTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: tokenTypeBearer}, nil
}
