package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/pkg/middleware"
)

// Handler は通知関連のHTTPハンドラ群。
type Handler struct {
	// tokens はプッシュトークンの登録を行う。
	tokens *TokenStore
	// subscriptions は購読の管理を行う。
	subscriptions *SubscriptionStore
	// reader は通知の参照と既読管理を行う。
	reader *Reader
	// logger は構造化ロガー。
	logger zerolog.Logger
}

// NewHandler は新しい通知ハンドラを生成する。
func NewHandler(tokens *TokenStore, subscriptions *SubscriptionStore, reader *Reader, logger zerolog.Logger) *Handler {
	return &Handler{
		tokens:        tokens,
		subscriptions: subscriptions,
		reader:        reader,
		logger:        logger,
	}
}

// RegisterRoutes は認証済みルーターグループに通知APIを登録する。
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	notifications := api.Group("/notifications")
	{
		// 国別購読の登録（置き換え）
		notifications.POST("/subscribe", h.handleSubscribe())
		// 購読情報の取得
		notifications.GET("/subscription", h.handleGetSubscription())
		// 新聞登録通知の受信設定
		notifications.PUT("/subscription/preferences", h.handleUpdatePreferences())
		// 端末のプッシュトークン登録
		notifications.POST("/tokens", h.handleRegisterToken())
		// 通知一覧取得
		notifications.GET("", h.handleList())
		// 未読件数取得
		notifications.GET("/unread-count", h.handleUnreadCount())
		// 全通知を既読にする
		notifications.PUT("/read-all", h.handleMarkAllAsRead())
		// 通知を既読にする
		notifications.PUT("/:id/read", h.handleMarkAsRead())
	}
}

// subscribeRequest は購読登録リクエストのJSON構造。
type subscribeRequest struct {
	// CountryCodes は購読する国コード（ISO 3166-1 alpha-3）。空配列は全解除を表す。
	CountryCodes []string `json:"country_codes" binding:"required,dive,len=3,alpha"`
}

// preferencesRequest は通知設定更新リクエストのJSON構造。
type preferencesRequest struct {
	// NotifyNewNewspapers は新聞登録時に通知を受け取るかどうか。
	NotifyNewNewspapers *bool `json:"notify_new_newspapers" binding:"required"`
}

// registerTokenRequest はプッシュトークン登録リクエストのJSON構造。
type registerTokenRequest struct {
	// Token は端末固有のプッシュトークン。
	Token string `json:"token" binding:"required"`
	// DeviceType は端末の種類。
	DeviceType string `json:"device_type" binding:"required,oneof=web ios android"`
}

// subscriptionResponse は購読情報のJSONレスポンス構造。
type subscriptionResponse struct {
	ID                  string   `json:"id,omitempty"`
	UserID              string   `json:"user_id,omitempty"`
	CountryCodes        []string `json:"country_codes"`
	NotifyNewNewspapers bool     `json:"notify_new_newspapers"`
	CreatedAt           string   `json:"created_at,omitempty"`
}

// notificationResponse は通知のJSONレスポンス構造。
type notificationResponse struct {
	ID     string         `json:"id"`
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data"`
	SentAt string         `json:"sent_at"`
	Read   bool           `json:"read"`
}

func toSubscriptionResponse(s Subscription) subscriptionResponse {
	codes := s.CountryCodes
	if codes == nil {
		codes = []string{}
	}
	return subscriptionResponse{
		ID:                  s.ID,
		UserID:              s.UserID,
		CountryCodes:        codes,
		NotifyNewNewspapers: s.NotifyNewNewspapers,
		CreatedAt:           s.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toNotificationResponses(notifications []Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		data := n.Data
		if data == nil {
			data = map[string]any{}
		}
		responses = append(responses, notificationResponse{
			ID:     n.ID,
			UserID: n.UserID,
			Title:  n.Title,
			Body:   n.Body,
			Data:   data,
			SentAt: n.SentAt.Format(time.RFC3339Nano),
			Read:   n.Read,
		})
	}
	return responses
}

// requireUserID は認証済みユーザーIDを取り出す。取得できない場合は401を返してfalseを返す。
func requireUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
		return "", false
	}
	return userID, true
}

// handleSubscribe は購読国を置き換えるハンドラ。
func (h *Handler) handleSubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		sub, err := h.subscriptions.Subscribe(c.Request.Context(), userID, req.CountryCodes)
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("購読の保存に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "購読の保存に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, toSubscriptionResponse(sub))
	}
}

// handleGetSubscription は購読情報を返すハンドラ。
// 購読が無い場合は空の国コードと通知有効の既定値を返す。
func (h *Handler) handleGetSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		sub, err := h.subscriptions.Get(c.Request.Context(), userID)
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("購読の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "購読の取得に失敗しました"})
			return
		}
		if sub == nil {
			c.JSON(http.StatusOK, subscriptionResponse{CountryCodes: []string{}, NotifyNewNewspapers: true})
			return
		}

		c.JSON(http.StatusOK, toSubscriptionResponse(*sub))
	}
}

// handleUpdatePreferences は新聞登録通知の受信可否を更新するハンドラ。
func (h *Handler) handleUpdatePreferences() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req preferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		sub, err := h.subscriptions.SetNotifyNewNewspapers(c.Request.Context(), userID, *req.NotifyNewNewspapers)
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("通知設定の更新に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知設定の更新に失敗しました"})
			return
		}
		if sub == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "購読が見つかりません"})
			return
		}

		c.JSON(http.StatusOK, toSubscriptionResponse(*sub))
	}
}

// handleRegisterToken は端末のプッシュトークンを登録するハンドラ。
// 登録済みのトークンは既存レコードを返す。
func (h *Handler) handleRegisterToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var req registerTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		pt, err := h.tokens.Register(c.Request.Context(), userID, req.Token, DeviceType(req.DeviceType))
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("プッシュトークンの登録に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "プッシュトークンの登録に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":          pt.ID,
			"user_id":     pt.UserID,
			"device_type": pt.DeviceType,
			"created_at":  pt.CreatedAt.Format(time.RFC3339Nano),
		})
	}
}

// handleList は認証済みユーザーの通知一覧を返すハンドラ。
func (h *Handler) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		limit := DefaultListLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは正の整数で指定してください"})
				return
			}
			limit = n
		}

		notifications, err := h.reader.List(c.Request.Context(), userID, limit)
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("通知一覧の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(notifications))
	}
}

// handleUnreadCount は未読通知数を返すハンドラ。
func (h *Handler) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		count, err := h.reader.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("未読件数の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読件数の取得に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleMarkAsRead は指定された通知を既読にするハンドラ。
// 存在しない通知IDでも成功として扱う。
func (h *Handler) handleMarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireUserID(c); !ok {
			return
		}

		notificationID := c.Param("id")
		if err := h.reader.MarkRead(c.Request.Context(), notificationID); err != nil {
			h.logger.Error().Err(err).Str("notification_id", notificationID).Msg("通知の既読処理に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の既読処理に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "通知を既読にしました"})
	}
}

// handleMarkAllAsRead は認証済みユーザーの全通知を既読にするハンドラ。
func (h *Handler) handleMarkAllAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		if err := h.reader.MarkAllRead(c.Request.Context(), userID); err != nil {
			h.logger.Error().Err(err).Str("user_id", userID).Msg("全通知の既読処理に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "全通知を既読にしました"})
	}
}
