package newspaper

import "time"

// Newspaper は国ごとに登録されるオンライン新聞。
type Newspaper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateInput は新聞登録の入力。
type CreateInput struct {
	Title       string
	URL         string
	CountryCode string
}

// Patch は新聞の部分更新。nil の項目は変更しない。
type Patch struct {
	Title       *string
	URL         *string
	CountryCode *string
}

// IsEmpty は更新対象の項目が1つも無いかを返す。
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.CountryCode == nil
}

// Fields は更新対象の項目名を返す。
func (p Patch) Fields() []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.URL != nil {
		fields = append(fields, "url")
	}
	if p.CountryCode != nil {
		fields = append(fields, "country_code")
	}
	return fields
}

// CountryInfo は国ごとの新聞件数。
type CountryInfo struct {
	CountryCode    string `json:"country_code"`
	NewspaperCount int    `json:"newspaper_count"`
}
