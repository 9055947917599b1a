package newspaper

import "context"

// Repository は新聞の永続化を担う。
type Repository interface {
	ListNewspapers(ctx context.Context) ([]Newspaper, error)
	ListNewspapersByCountry(ctx context.Context, countryCode string) ([]Newspaper, error)
	// FindNewspaper は存在しない場合に nil を返す。
	FindNewspaper(ctx context.Context, id string) (*Newspaper, error)
	CreateNewspaper(ctx context.Context, n Newspaper) error
	// UpdateNewspaper は patch の非nil項目だけを更新し、更新後のレコードを返す。存在しない場合は nil を返す。
	UpdateNewspaper(ctx context.Context, id string, patch Patch) (*Newspaper, error)
	// DeleteNewspaper は削除できた場合に true を返す。
	DeleteNewspaper(ctx context.Context, id string) (bool, error)
	// CountNewspapersByCountry は国コードの昇順で件数を返す。
	CountNewspapersByCountry(ctx context.Context) ([]CountryInfo, error)
}
