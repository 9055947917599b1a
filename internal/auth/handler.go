package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/pkg/middleware"
)

// Handler は認証関連のHTTPハンドラ群。
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHandler は新しい認証ハンドラを生成する。
func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes はログイン（認証不要）とトークン検証（認証必須）のルートを登録する。
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.handleLogin())
	protected.GET("/auth/verify", h.handleVerify())
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleLogin はユーザー名とパスワードでログインし、アクセストークンを返すハンドラ。
func (h *Handler) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				h.logger.Warn().Str("username", req.Username).Msg("ログインに失敗しました")
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			h.logger.Error().Err(err).Str("username", req.Username).Msg("ログイン処理に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログイン処理に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, token)
	}
}

// handleVerify はアクセストークンのユーザー名を返すハンドラ。
func (h *Handler) handleVerify() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": middleware.GetUsername(c)})
	}
}
