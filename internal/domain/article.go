package domain

import "time"

// ArticlePreview is a candidate article returned by a source adapter before
// anything is committed to storage. URL is the identity key for dedup.
type ArticlePreview struct {
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	Source          string     `json:"source"`
	Snippet         string     `json:"snippet,omitempty"`
	DocumentType    string     `json:"document_type,omitempty"`
	MatchedKeywords []string   `json:"matched_keywords,omitempty"`
	IsDuplicate     bool       `json:"is_duplicate"`
}

// Article is the persisted form of a collected article.
type Article struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	Source          string     `json:"source"`
	CountryCode     string     `json:"country_code,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	Content         string     `json:"content"`
	TranslatedTitle string     `json:"translated_title,omitempty"`
	TranslatedBody  string     `json:"translated_body,omitempty"`
	CollectedAt     time.Time  `json:"collected_at"`
}

// ScrapedContent is the payload returned by the scrape capability.
type ScrapedContent struct {
	Markdown string
	HTML     string
	Metadata map[string]string
}

// Translation is the payload returned by the translate capability.
type Translation struct {
	Title   string
	Content string
}

// Attachment is a downloaded document linked from a collected article.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}
