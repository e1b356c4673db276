package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Ukiyograin/clipboard-master/internal/entry"
)

// Cleanup deletes every entry older than retentionDays that is neither
// favorited nor pinned, and returns the number deleted. Protected entries
// are never touched regardless of age; derived index rows cascade away
// with their parent.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE favorite = 0 AND pinned = 0 AND captured_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup count: %v", ErrStorage, err)
	}
	return n, nil
}

// Statistics runs the full-table aggregates. The result is recomputed on
// every call, never cached.
func (s *Store) Statistics(ctx context.Context) (entry.Statistics, error) {
	var stats entry.Statistics

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE content_type = 'text'),
			COUNT(*) FILTER (WHERE content_type = 'image'),
			COUNT(*) FILTER (WHERE content_type = 'file'),
			COUNT(*) FILTER (WHERE content_type = 'html'),
			COUNT(*) FILTER (WHERE favorite = 1),
			COUNT(*) FILTER (WHERE pinned = 1),
			COALESCE(SUM(LENGTH(content_json)), 0) + COALESCE(SUM(LENGTH(preview_image)), 0)
		FROM entries`).Scan(
		&stats.TotalItems, &stats.TextItems, &stats.ImageItems, &stats.FileItems,
		&stats.HTMLItems, &stats.FavoriteItems, &stats.PinnedItems, &stats.TotalSizeBytes,
	)
	if err != nil {
		return entry.Statistics{}, fmt.Errorf("%w: statistics: %v", ErrStorage, err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`,
	).Scan(&stats.DatabaseSizeBytes)
	if err != nil {
		return entry.Statistics{}, fmt.Errorf("%w: database size: %v", ErrStorage, err)
	}

	return stats, nil
}
