package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ukiyograin/clipboard-master/internal/entry"
)

// Search composes the query's filters and returns matching entries,
// newest first, with pagination. Free-text queries are additionally
// recorded in the search history log.
func (s *Store) Search(ctx context.Context, q entry.SearchQuery) ([]*entry.Entry, error) {
	var (
		where []string
		args  []any
	)

	if q.Text != "" {
		where = append(where, `(preview_text LIKE ? OR content_json LIKE ?)`)
		pattern := "%" + q.Text + "%"
		args = append(args, pattern, pattern)
	}
	for _, tag := range q.Tags {
		where = append(where, `EXISTS (SELECT 1 FROM entry_tags t WHERE t.entry_id = entries.id AND t.tag = ?)`)
		args = append(args, tag)
	}
	if q.DateFrom != nil {
		where = append(where, `captured_at >= ?`)
		args = append(args, q.DateFrom.Unix())
	}
	if q.DateTo != nil {
		where = append(where, `captured_at <= ?`)
		args = append(args, q.DateTo.Unix())
	}
	if len(q.ContentTypes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.ContentTypes)), ",")
		where = append(where, `content_type IN (`+placeholders+`)`)
		for _, ct := range q.ContentTypes {
			args = append(args, string(ct))
		}
	}
	if q.FavoriteOnly {
		where = append(where, `favorite = 1`)
	}
	if q.PinnedOnly {
		where = append(where, `pinned = 1`)
	}

	query := selectColumns + ` FROM entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY captured_at DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
		if q.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, q.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: search query: %v", ErrStorage, err)
	}
	defer rows.Close()

	results, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	if q.Text != "" {
		s.recordSearch(ctx, q.Text, len(results))
	}
	return results, nil
}

// recordSearch appends to the search_history log. Failures only degrade
// the log, never the search itself.
func (s *Store) recordSearch(ctx context.Context, text string, results int) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (query, result_count) VALUES (?, ?)`, text, results); err != nil {
		slog.Warn("failed to record search history", "err", err)
	}
}
