// Package entry defines the clipboard entry model: the content tagged
// union, previews, search queries and statistics.
//
// Content is serialised as a self-describing JSON document with a stable
// "type" discriminator. Binary payloads ([]byte fields) are base64-encoded
// by encoding/json so the document is safe to store and export as text.
package entry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentType discriminates the content variants. The string values are
// stable: they are persisted in the database and in exported documents.
type ContentType string

const (
	TypeText     ContentType = "text"
	TypeHTML     ContentType = "html"
	TypeRichText ContentType = "richtext"
	TypeImage    ContentType = "image"
	TypeFile     ContentType = "file"
	TypeCustom   ContentType = "custom"
)

// ImageData is a decoded raster payload re-encoded to PNG, plus an
// optional small thumbnail (also PNG).
type ImageData struct {
	Data      []byte `json:"data"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Thumbnail []byte `json:"thumbnail,omitempty"`
}

// FileItem is one path from a file-drop clipboard payload.
type FileItem struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Content is the tagged union over clipboard payload variants. Type is
// always set; exactly the fields belonging to that variant are populated.
type Content struct {
	Type ContentType `json:"type"`

	// text, html, richtext
	Text string `json:"text,omitempty"`

	// image
	Image *ImageData `json:"image,omitempty"`

	// file
	Files []FileItem `json:"files,omitempty"`

	// custom
	Name string `json:"name,omitempty"`
	Data []byte `json:"data,omitempty"`
}

func NewText(s string) Content     { return Content{Type: TypeText, Text: s} }
func NewHTML(s string) Content     { return Content{Type: TypeHTML, Text: s} }
func NewRichText(s string) Content { return Content{Type: TypeRichText, Text: s} }

func NewImage(img ImageData) Content { return Content{Type: TypeImage, Image: &img} }

func NewFileList(files []FileItem) Content { return Content{Type: TypeFile, Files: files} }

func NewCustom(name string, data []byte) Content {
	return Content{Type: TypeCustom, Name: name, Data: data}
}

// Size returns the payload size in bytes, used for statistics and the
// per-capture size checks.
func (c Content) Size() int64 {
	switch c.Type {
	case TypeText, TypeHTML, TypeRichText:
		return int64(len(c.Text))
	case TypeImage:
		if c.Image != nil {
			return int64(len(c.Image.Data))
		}
	case TypeFile:
		var n int64
		for _, f := range c.Files {
			n += f.Size
		}
		return n
	case TypeCustom:
		return int64(len(c.Data))
	}
	return 0
}

// PreviewLimit is the maximum length, in runes, of a text-derived preview.
const PreviewLimit = 100

// Ellipsis marks a truncated text preview.
const Ellipsis = "…"

// Preview derives the preview text for a content value. The derivation is
// deterministic and the result is never empty.
func Preview(c Content) string {
	switch c.Type {
	case TypeText, TypeHTML, TypeRichText:
		return truncate(c.Text)
	case TypeImage:
		if c.Image != nil {
			return fmt.Sprintf("[Image %dx%d]", c.Image.Width, c.Image.Height)
		}
		return "[Image]"
	case TypeFile:
		if len(c.Files) == 1 {
			return "[1 file]"
		}
		return fmt.Sprintf("[%d files]", len(c.Files))
	case TypeCustom:
		return fmt.Sprintf("[%s, %d bytes]", c.Name, len(c.Data))
	}
	return "[empty]"
}

func truncate(s string) string {
	if s == "" {
		return "[empty]"
	}
	runes := []rune(s)
	if len(runes) <= PreviewLimit {
		return s
	}
	return string(runes[:PreviewLimit]) + Ellipsis
}

// Entry is one captured clipboard payload, persisted as a single record.
type Entry struct {
	ID           uuid.UUID         `json:"id"`
	Content      Content           `json:"content"`
	CapturedAt   time.Time         `json:"captured_at"`
	Tags         []string          `json:"tags"`
	Favorite     bool              `json:"favorite"`
	Pinned       bool              `json:"pinned"`
	SourceApp    string            `json:"source_app,omitempty"`
	SourceWindow string            `json:"source_window,omitempty"`
	PreviewText  string            `json:"preview_text"`
	PreviewImage []byte            `json:"preview_image,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// New creates an entry for freshly captured content: a new ID, the current
// UTC time truncated to whole seconds (the storage resolution), and the
// derived preview.
func New(c Content) *Entry {
	return &Entry{
		ID:          uuid.New(),
		Content:     c,
		CapturedAt:  time.Now().UTC().Truncate(time.Second),
		PreviewText: Preview(c),
	}
}

// AddTags appends the given tags, skipping any the entry already has.
// Insertion order of new tags is preserved.
func (e *Entry) AddTags(tags ...string) {
	have := make(map[string]struct{}, len(e.Tags))
	for _, t := range e.Tags {
		have[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := have[t]; ok {
			continue
		}
		have[t] = struct{}{}
		e.Tags = append(e.Tags, t)
	}
}

// RemoveTags removes the given tags; absent tags are ignored.
func (e *Entry) RemoveTags(tags ...string) {
	drop := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		drop[t] = struct{}{}
	}
	kept := e.Tags[:0]
	for _, t := range e.Tags {
		if _, ok := drop[t]; !ok {
			kept = append(kept, t)
		}
	}
	e.Tags = kept
}
