package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/globalnews/navigator/internal/newspaper"
)

const newspaperColumns = "id, title, url, country_code, created_at"

// ListNewspapers は全ての新聞を登録順に返す。
func (s *Store) ListNewspapers(ctx context.Context) ([]newspaper.Newspaper, error) {
	return s.queryNewspapers(ctx, `SELECT `+newspaperColumns+` FROM newspapers ORDER BY created_at, rowid`)
}

// ListNewspapersByCountry は国コードが一致する新聞を登録順に返す。
func (s *Store) ListNewspapersByCountry(ctx context.Context, countryCode string) ([]newspaper.Newspaper, error) {
	return s.queryNewspapers(ctx,
		`SELECT `+newspaperColumns+` FROM newspapers WHERE country_code = ? ORDER BY created_at, rowid`,
		countryCode,
	)
}

// FindNewspaper は新聞を1件返す。存在しない場合は nil を返す。
func (s *Store) FindNewspaper(ctx context.Context, id string) (*newspaper.Newspaper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+newspaperColumns+` FROM newspapers WHERE id = ?`, id)
	return optionalNewspaper(scanNewspaper(row))
}

// CreateNewspaper は新聞を保存する。
func (s *Store) CreateNewspaper(ctx context.Context, n newspaper.Newspaper) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO newspapers (id, title, url, country_code, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.URL, n.CountryCode, formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("newspapersへの保存に失敗: %w", err)
	}
	return nil
}

// UpdateNewspaper は patch の非nil項目だけを更新する。存在しない場合は nil を返す。
func (s *Store) UpdateNewspaper(ctx context.Context, id string, patch newspaper.Patch) (*newspaper.Newspaper, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE newspapers SET
			title = COALESCE(?, title),
			url = COALESCE(?, url),
			country_code = COALESCE(?, country_code)
		WHERE id = ?
		RETURNING `+newspaperColumns,
		nullable(patch.Title), nullable(patch.URL), nullable(patch.CountryCode), id,
	)
	return optionalNewspaper(scanNewspaper(row))
}

// DeleteNewspaper は新聞を削除する。削除した行が無い場合は false を返す。
func (s *Store) DeleteNewspaper(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM newspapers WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("newspapersの削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	return n > 0, nil
}

// CountNewspapersByCountry は国ごとの新聞件数を国コード順に返す。
func (s *Store) CountNewspapersByCountry(ctx context.Context) ([]newspaper.CountryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_code, COUNT(*)
		FROM newspapers
		GROUP BY country_code
		ORDER BY country_code`)
	if err != nil {
		return nil, fmt.Errorf("国別件数の集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []newspaper.CountryInfo
	for rows.Next() {
		var c newspaper.CountryInfo
		if err := rows.Scan(&c.CountryCode, &c.NewspaperCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) queryNewspapers(ctx context.Context, query string, args ...any) ([]newspaper.Newspaper, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("newspapersの検索に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []newspaper.Newspaper
	for rows.Next() {
		n, err := scanNewspaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// nullable は nil をSQLのNULLとして渡すために変換する。
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optionalNewspaper(n newspaper.Newspaper, err error) (*newspaper.Newspaper, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("newspapersの取得に失敗: %w", err)
	}
	return &n, nil
}

func scanNewspaper(sc scanner) (newspaper.Newspaper, error) {
	var (
		n         newspaper.Newspaper
		createdAt string
	)
	if err := sc.Scan(&n.ID, &n.Title, &n.URL, &n.CountryCode, &createdAt); err != nil {
		return newspaper.Newspaper{}, err
	}
	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return newspaper.Newspaper{}, err
	}
	return n, nil
}
