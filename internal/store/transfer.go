package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ukiyograin/clipboard-master/internal/entry"
)

// ExportFormat selects the serialisation for Export. Only FormatJSON
// round-trips with full fidelity; the others are flattened views.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatCSV      ExportFormat = "csv"
	FormatHTML     ExportFormat = "html"
	FormatMarkdown ExportFormat = "markdown"
)

// ParseExportFormat maps a user-supplied name to an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Export serialises the full entry set to path in the given format.
func (s *Store) Export(ctx context.Context, path string, format ExportFormat) error {
	entries, err := s.Search(ctx, entry.SearchQuery{})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(entries)
	case FormatCSV:
		err = writeCSV(f, entries)
	case FormatHTML:
		err = writeHTML(f, entries)
	case FormatMarkdown:
		err = writeMarkdown(f, entries)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("%w: writing export: %v", ErrStorage, err)
	}
	return f.Close()
}

func writeCSV(f *os.File, entries []*entry.Entry) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id", "type", "captured_at", "preview", "tags", "favorite", "pinned", "source_app",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{
			e.ID.String(),
			string(e.Content.Type),
			e.CapturedAt.Format(time.RFC3339),
			e.PreviewText,
			strings.Join(e.Tags, ";"),
			strconv.FormatBool(e.Favorite),
			strconv.FormatBool(e.Pinned),
			e.SourceApp,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeHTML(f *os.File, entries []*entry.Entry) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Clipboard history</title></head>\n<body>\n")
	b.WriteString("<h1>Clipboard history</h1>\n<table border=\"1\">\n")
	b.WriteString("<tr><th>Captured</th><th>Type</th><th>Preview</th><th>Tags</th></tr>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			e.CapturedAt.Format(time.RFC3339),
			html.EscapeString(string(e.Content.Type)),
			html.EscapeString(e.PreviewText),
			html.EscapeString(strings.Join(e.Tags, ", ")),
		)
	}
	b.WriteString("</table>\n</body>\n</html>\n")
	_, err := f.WriteString(b.String())
	return err
}

func writeMarkdown(f *os.File, entries []*entry.Entry) error {
	var b strings.Builder
	b.WriteString("# Clipboard history\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s — %s\n\n", e.CapturedAt.Format(time.RFC3339), e.Content.Type)
		fmt.Fprintf(&b, "%s\n\n", e.PreviewText)
		if len(e.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(e.Tags, ", "))
		}
	}
	_, err := f.WriteString(b.String())
	return err
}

// Import reads a JSON export from path and saves each entry. Entries that
// carry an ID keep it; entries without one get a fresh ID. Each entry goes
// through Save, so the near-duplicate rule applies: an entry whose preview
// was captured within the window folds and is not counted, while an entry
// outside the window is written even if its ID already exists, replacing
// that row. Returns the number of entries written.
func (s *Store) Import(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %v", ErrStorage, path, err)
	}

	var entries []*entry.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("%w: parsing import: %v", ErrDataIntegrity, err)
	}

	imported := 0
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.PreviewText == "" {
			e.PreviewText = entry.Preview(e.Content)
		}
		saved, err := s.Save(ctx, e)
		if err != nil {
			return imported, err
		}
		if saved {
			imported++
		}
	}
	return imported, nil
}
