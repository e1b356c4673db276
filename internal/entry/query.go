package entry

import "time"

// SearchQuery is the filter set for Store.Search. The zero value matches
// everything; constructing a query has no side effects.
type SearchQuery struct {
	Text         string        `json:"text,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	DateFrom     *time.Time    `json:"date_from,omitempty"`
	DateTo       *time.Time    `json:"date_to,omitempty"`
	ContentTypes []ContentType `json:"content_types,omitempty"`
	FavoriteOnly bool          `json:"favorite_only,omitempty"`
	PinnedOnly   bool          `json:"pinned_only,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	Offset       int           `json:"offset,omitempty"`
}

// Statistics is a read-only aggregate over the store, recomputed on demand.
type Statistics struct {
	TotalItems        int64 `json:"total_items"`
	TextItems         int64 `json:"text_items"`
	ImageItems        int64 `json:"image_items"`
	FileItems         int64 `json:"file_items"`
	HTMLItems         int64 `json:"html_items"`
	FavoriteItems     int64 `json:"favorite_items"`
	PinnedItems       int64 `json:"pinned_items"`
	TotalSizeBytes    int64 `json:"total_size_bytes"`
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}
