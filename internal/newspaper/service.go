package newspaper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/globalnews/navigator/pkg/event"
)

// EventHandler は新聞イベントの受け手。通知レコーダーが実装する。
type EventHandler interface {
	HandleEvent(ctx context.Context, e *event.Event) error
}

// Service は新聞の管理を行う。
type Service struct {
	repo     Repository
	handlers []EventHandler
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService は新しいServiceを生成する。handlers には新聞イベントの受け手を渡す。
func NewService(repo Repository, logger zerolog.Logger, handlers ...EventHandler) *Service {
	return &Service{
		repo:     repo,
		handlers: handlers,
		logger:   logger.With().Str("component", "newspaper").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// List は全ての新聞を返す。
func (s *Service) List(ctx context.Context) ([]Newspaper, error) {
	newspapers, err := s.repo.ListNewspapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("新聞一覧の取得に失敗: %w", err)
	}
	return newspapers, nil
}

// ListByCountry は指定した国の新聞を返す。国コードは大文字小文字を区別しない。
func (s *Service) ListByCountry(ctx context.Context, countryCode string) ([]Newspaper, error) {
	newspapers, err := s.repo.ListNewspapersByCountry(ctx, normalizeCountryCode(countryCode))
	if err != nil {
		return nil, fmt.Errorf("国別の新聞一覧の取得に失敗: %w", err)
	}
	return newspapers, nil
}

// Get は新聞を1件返す。存在しない場合は nil を返す。
func (s *Service) Get(ctx context.Context, id string) (*Newspaper, error) {
	n, err := s.repo.FindNewspaper(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("新聞の取得に失敗: %w", err)
	}
	return n, nil
}

// Create は新聞を登録し、NewspaperCreated イベントを発行する。
// イベントの処理に失敗しても登録済みの新聞は取り消さない。
func (s *Service) Create(ctx context.Context, in CreateInput) (Newspaper, error) {
	n := Newspaper{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		CountryCode: normalizeCountryCode(in.CountryCode),
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateNewspaper(ctx, n); err != nil {
		return Newspaper{}, fmt.Errorf("新聞の登録に失敗: %w", err)
	}

	s.publish(ctx, n.ID, event.TypeNewspaperCreated, event.NewspaperCreatedData{
		ID:          n.ID,
		Title:       n.Title,
		CountryCode: n.CountryCode,
	})
	return n, nil
}

// Update は patch の非nil項目だけを更新する。存在しない場合は nil を返す。
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Newspaper, error) {
	if patch.CountryCode != nil {
		code := normalizeCountryCode(*patch.CountryCode)
		patch.CountryCode = &code
	}

	var (
		n   *Newspaper
		err error
	)
	if patch.IsEmpty() {
		n, err = s.repo.FindNewspaper(ctx, id)
	} else {
		n, err = s.repo.UpdateNewspaper(ctx, id, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("新聞の更新に失敗: %w", err)
	}
	if n == nil || patch.IsEmpty() {
		return n, nil
	}

	s.publish(ctx, id, event.TypeNewspaperUpdated, event.NewspaperUpdatedData{Fields: patch.Fields()})
	return n, nil
}

// Delete は新聞を削除する。存在しない場合は false を返す。
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteNewspaper(ctx, id)
	if err != nil {
		return false, fmt.Errorf("新聞の削除に失敗: %w", err)
	}
	if deleted {
		s.publish(ctx, id, event.TypeNewspaperDeleted, event.NewspaperDeletedData{ID: id})
	}
	return deleted, nil
}

// Countries は新聞が登録されている国と件数を国コード順に返す。
func (s *Service) Countries(ctx context.Context) ([]CountryInfo, error) {
	countries, err := s.repo.CountNewspapersByCountry(ctx)
	if err != nil {
		return nil, fmt.Errorf("国別件数の取得に失敗: %w", err)
	}
	return countries, nil
}

// publish はイベントを全ての受け手に渡す。受け手のエラーはログに残すだけにする。
func (s *Service) publish(ctx context.Context, aggregateID string, eventType event.Type, data any) {
	if len(s.handlers) == 0 {
		return
	}

	e, err := event.New(aggregateID, event.AggregateTypeNewspaper, eventType, data)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("イベントの生成に失敗")
		return
	}

	for _, h := range s.handlers {
		if err := h.HandleEvent(ctx, e); err != nil {
			s.logger.Warn().Err(err).
				Str("event_id", e.ID).
				Str("event_type", string(eventType)).
				Str("newspaper_id", aggregateID).
				Msg("イベントの処理に失敗しました")
		}
	}
}

func normalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
