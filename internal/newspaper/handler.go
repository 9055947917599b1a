package newspaper

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler は新聞関連のHTTPハンドラ群。
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHandler は新しい新聞ハンドラを生成する。
func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes は参照系を public に、更新系を protected に登録する。
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/newspapers", h.handleList())
	public.GET("/newspapers/country/:country_code", h.handleListByCountry())
	public.GET("/newspapers/:id", h.handleGet())
	public.GET("/countries", h.handleCountries())

	protected.POST("/newspapers", h.handleCreate())
	protected.PUT("/newspapers/:id", h.handleUpdate())
	protected.DELETE("/newspapers/:id", h.handleDelete())
}

// createRequest は新聞登録リクエストのJSON構造。
type createRequest struct {
	Title       string `json:"title" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	CountryCode string `json:"country_code" binding:"required,len=3,alpha"`
}

// updateRequest は新聞更新リクエストのJSON構造。省略した項目は変更しない。
type updateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	URL         *string `json:"url" binding:"omitempty,url"`
	CountryCode *string `json:"country_code" binding:"omitempty,len=3,alpha"`
}

// handleList は全ての新聞を返すハンドラ。
func (h *Handler) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		newspapers, err := h.service.List(c.Request.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("新聞一覧の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, nonNil(newspapers))
	}
}

// handleListByCountry は指定した国の新聞を返すハンドラ。
func (h *Handler) handleListByCountry() gin.HandlerFunc {
	return func(c *gin.Context) {
		countryCode := c.Param("country_code")
		newspapers, err := h.service.ListByCountry(c.Request.Context(), countryCode)
		if err != nil {
			h.logger.Error().Err(err).Str("country_code", countryCode).Msg("国別の新聞一覧の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, nonNil(newspapers))
	}
}

// handleGet は新聞を1件返すハンドラ。
func (h *Handler) handleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		n, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			h.logger.Error().Err(err).Str("newspaper_id", id).Msg("新聞の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞の取得に失敗しました"})
			return
		}
		if n == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "新聞が見つかりません"})
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// handleCountries は国ごとの新聞件数を返すハンドラ。
func (h *Handler) handleCountries() gin.HandlerFunc {
	return func(c *gin.Context) {
		countries, err := h.service.Countries(c.Request.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("国別件数の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "国一覧の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, nonNil(countries))
	}
}

// handleCreate は新聞を登録するハンドラ。
func (h *Handler) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		n, err := h.service.Create(c.Request.Context(), CreateInput{
			Title:       req.Title,
			URL:         req.URL,
			CountryCode: req.CountryCode,
		})
		if err != nil {
			h.logger.Error().Err(err).Msg("新聞の登録に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞の登録に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// handleUpdate は新聞を部分更新するハンドラ。
func (h *Handler) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストが不正です: " + err.Error()})
			return
		}

		id := c.Param("id")
		n, err := h.service.Update(c.Request.Context(), id, Patch{
			Title:       req.Title,
			URL:         req.URL,
			CountryCode: req.CountryCode,
		})
		if err != nil {
			h.logger.Error().Err(err).Str("newspaper_id", id).Msg("新聞の更新に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞の更新に失敗しました"})
			return
		}
		if n == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "新聞が見つかりません"})
			return
		}
		c.JSON(http.StatusOK, n)
	}
}

// handleDelete は新聞を削除するハンドラ。
func (h *Handler) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		deleted, err := h.service.Delete(c.Request.Context(), id)
		if err != nil {
			h.logger.Error().Err(err).Str("newspaper_id", id).Msg("新聞の削除に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "新聞の削除に失敗しました"})
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "新聞が見つかりません"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "新聞を削除しました"})
	}
}

// nonNil は nil スライスを空配列としてJSONに出力するために変換する。
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
