package navigator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/internal/auth"
	"github.com/globalnews/navigator/internal/config"
	"github.com/globalnews/navigator/internal/newspaper"
	"github.com/globalnews/navigator/internal/notification"
	"github.com/globalnews/navigator/pkg/middleware"
)

const (
	serviceName     = "navigator"
	shutdownTimeout = 10 * time.Second
)

// Server はGlobal News NavigatorのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時の設定。
	cfg *config.Config
	// store は全コンポーネントが共有する永続化層。
	store Store
	// logger は構造化ロガー。
	logger zerolog.Logger
}

// NewServer はストアを各コンポーネントに注入し、ルーティングを設定したサーバーを生成する。
func NewServer(cfg *config.Config, store Store, logger zerolog.Logger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		router: router,
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	deliverer := notification.NewLogDeliverer(s.cfg.FirebaseServerKey, s.logger)
	if !deliverer.Enabled() {
		s.logger.Warn().Msg("FIREBASE_SERVER_KEYが未設定のためプッシュ配信は無効です")
	}

	tokens := notification.NewTokenStore(s.store)
	subscriptions := notification.NewSubscriptionStore(s.store)
	reader := notification.NewReader(s.store)
	recorder := notification.NewRecorder(s.store, s.store, s.store, deliverer, s.logger)

	authService := auth.NewService(s.store, auth.Options{
		Secret:        s.cfg.JWTSecret,
		TokenTTL:      s.cfg.AccessTokenTTL,
		AdminUsername: s.cfg.AdminUsername,
		AdminPassword: s.cfg.AdminPassword,
	})
	newspapers := newspaper.NewService(s.store, s.logger, recorder)

	// 認証不要のエンドポイント
	public := s.router.Group("/api")
	// 認証必須のエンドポイント
	protected := s.router.Group("/api")
	protected.Use(middleware.JWTAuth(s.cfg.JWTSecret))

	auth.NewHandler(authService, s.logger).RegisterRoutes(public, protected)
	newspaper.NewHandler(newspapers, s.logger).RegisterRoutes(public, protected)
	notification.NewHandler(tokens, subscriptions, reader, s.logger).RegisterRoutes(protected)

	s.router.GET("/health", s.handleHealth())
}

// handleHealth はストアへの疎通を含めたヘルスチェックを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			s.logger.Error().Err(err).Msg("ヘルスチェックでストアに接続できません")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": serviceName})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	}
}

// Run はHTTPサーバーを起動し、ctx がキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("HTTPサーバーを起動します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("HTTPサーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return <-errCh
}
