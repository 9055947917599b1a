package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/globalnews/navigator/internal/newspaper"
)

// ListNewspapers は全ての新聞を登録順に返す。
func (s *Store) ListNewspapers(ctx context.Context) ([]newspaper.Newspaper, error) {
	return s.findNewspapers(s.db.WithContext(ctx))
}

// ListNewspapersByCountry は国コードが一致する新聞を登録順に返す。
func (s *Store) ListNewspapersByCountry(ctx context.Context, countryCode string) ([]newspaper.Newspaper, error) {
	return s.findNewspapers(s.db.WithContext(ctx).Where("country_code = ?", countryCode))
}

func (s *Store) findNewspapers(db *gorm.DB) ([]newspaper.Newspaper, error) {
	var rows []newspaperRow
	if err := db.Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("newspapersの検索に失敗: %w", err)
	}
	out := make([]newspaper.Newspaper, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// FindNewspaper は新聞を1件返す。存在しない場合は nil を返す。
func (s *Store) FindNewspaper(ctx context.Context, id string) (*newspaper.Newspaper, error) {
	var row newspaperRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("newspapersの取得に失敗: %w", err)
	}
	n := row.toModel()
	return &n, nil
}

// CreateNewspaper は新聞を保存する。
func (s *Store) CreateNewspaper(ctx context.Context, n newspaper.Newspaper) error {
	row := newspaperRow{
		ID:          n.ID,
		Title:       n.Title,
		URL:         n.URL,
		CountryCode: n.CountryCode,
		CreatedAt:   n.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("newspapersへの保存に失敗: %w", err)
	}
	return nil
}

// UpdateNewspaper は patch の非nil項目だけを更新する。存在しない場合は nil を返す。
func (s *Store) UpdateNewspaper(ctx context.Context, id string, patch newspaper.Patch) (*newspaper.Newspaper, error) {
	updates := make(map[string]any, 3)
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.URL != nil {
		updates["url"] = *patch.URL
	}
	if patch.CountryCode != nil {
		updates["country_code"] = *patch.CountryCode
	}
	if len(updates) == 0 {
		return s.FindNewspaper(ctx, id)
	}

	var rows []newspaperRow
	res := s.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("newspapersの更新に失敗: %w", res.Error)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := rows[0].toModel()
	return &n, nil
}

// DeleteNewspaper は新聞を削除する。削除した行が無い場合は false を返す。
func (s *Store) DeleteNewspaper(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&newspaperRow{})
	if res.Error != nil {
		return false, fmt.Errorf("newspapersの削除に失敗: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CountNewspapersByCountry は国ごとの新聞件数を国コード順に返す。
func (s *Store) CountNewspapersByCountry(ctx context.Context) ([]newspaper.CountryInfo, error) {
	var out []newspaper.CountryInfo
	if err := s.db.WithContext(ctx).
		Model(&newspaperRow{}).
		Select("country_code, COUNT(*) AS newspaper_count").
		Group("country_code").
		Order("country_code").
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("国別件数の集計に失敗: %w", err)
	}
	return out, nil
}

func (r newspaperRow) toModel() newspaper.Newspaper {
	return newspaper.Newspaper{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		CountryCode: r.CountryCode,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}
