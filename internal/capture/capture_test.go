package capture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/entry"
	"github.com/Ukiyograin/clipboard-master/internal/settings"
)

func newTestEngine(mutate func(*settings.Settings)) *Engine {
	s := settings.Default()
	if mutate != nil {
		mutate(&s)
	}
	return NewEngine(settings.NewStore(s))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCaptureText(t *testing.T) {
	en := newTestEngine(nil)

	e, err := en.Capture(&clip.Snapshot{
		Text:         []byte("hello world"),
		SourceApp:    "term",
		SourceWindow: "tty1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Type != entry.TypeText {
		t.Fatalf("content type = %q, want text", e.Content.Type)
	}
	if e.Content.Text != "hello world" {
		t.Fatalf("text = %q", e.Content.Text)
	}
	if e.PreviewText != "hello world" {
		t.Fatalf("preview = %q", e.PreviewText)
	}
	if e.SourceApp != "term" || e.SourceWindow != "tty1" {
		t.Fatalf("source = %q/%q", e.SourceApp, e.SourceWindow)
	}
}

func TestCaptureLongTextPreviewTruncated(t *testing.T) {
	en := newTestEngine(nil)
	long := strings.Repeat("x", 250)

	e, err := en.Capture(&clip.Snapshot{Text: []byte(long)})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Text != long {
		t.Fatal("full text must be stored untruncated")
	}
	want := strings.Repeat("x", entry.PreviewLimit) + entry.Ellipsis
	if e.PreviewText != want {
		t.Fatalf("preview = %q (%d runes)", e.PreviewText, len([]rune(e.PreviewText)))
	}
}

func TestCaptureImage(t *testing.T) {
	en := newTestEngine(nil)

	e, err := en.Capture(&clip.Snapshot{Image: pngBytes(t, 300, 200)})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Type != entry.TypeImage {
		t.Fatalf("content type = %q", e.Content.Type)
	}
	img := e.Content.Image
	if img == nil {
		t.Fatal("image payload missing")
	}
	if img.Width != 300 || img.Height != 200 {
		t.Fatalf("dimensions = %dx%d", img.Width, img.Height)
	}
	if img.Format != "png" {
		t.Fatalf("format = %q", img.Format)
	}
	if e.PreviewText != "[Image 300x200]" {
		t.Fatalf("preview = %q", e.PreviewText)
	}

	// Default settings compress, so a thumbnail must be present and fit
	// the bounding box.
	if len(img.Thumbnail) == 0 {
		t.Fatal("thumbnail missing with compression enabled")
	}
	thumb, err := png.Decode(bytes.NewReader(img.Thumbnail))
	if err != nil {
		t.Fatal(err)
	}
	b := thumb.Bounds()
	if b.Dx() > ThumbnailSize || b.Dy() > ThumbnailSize {
		t.Fatalf("thumbnail %dx%d exceeds %d box", b.Dx(), b.Dy(), ThumbnailSize)
	}
	if !bytes.Equal(e.PreviewImage, img.Thumbnail) {
		t.Fatal("preview image should reuse the thumbnail bytes")
	}
}

func TestCaptureImageNoThumbnailWhenCompressionDisabled(t *testing.T) {
	en := newTestEngine(func(s *settings.Settings) {
		s.CompressImages = false
	})

	e, err := en.Capture(&clip.Snapshot{Image: pngBytes(t, 300, 200)})
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Content.Image.Thumbnail) != 0 {
		t.Fatal("thumbnail generated despite compression disabled")
	}
	if len(e.PreviewImage) != 0 {
		t.Fatal("preview image set despite compression disabled")
	}
}

func TestCaptureImageSmallNotUpscaled(t *testing.T) {
	en := newTestEngine(nil)

	e, err := en.Capture(&clip.Snapshot{Image: pngBytes(t, 40, 30)})
	if err != nil {
		t.Fatal(err)
	}
	thumb, err := png.Decode(bytes.NewReader(e.Content.Image.Thumbnail))
	if err != nil {
		t.Fatal(err)
	}
	b := thumb.Bounds()
	if b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("small image was rescaled to %dx%d", b.Dx(), b.Dy())
	}
}

func TestCaptureImageOverSizeLimit(t *testing.T) {
	en := newTestEngine(func(s *settings.Settings) {
		s.MaxImageSizeMB = 0
	})

	_, err := en.Capture(&clip.Snapshot{Image: pngBytes(t, 10, 10)})
	if !errors.Is(err, ErrCapture) {
		t.Fatalf("err = %v, want ErrCapture", err)
	}
}

func TestCaptureImageDecodeFailure(t *testing.T) {
	en := newTestEngine(nil)

	_, err := en.Capture(&clip.Snapshot{Image: []byte("not an image")})
	if !errors.Is(err, ErrCapture) {
		t.Fatalf("err = %v, want ErrCapture", err)
	}
}

func TestCaptureFiles(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(real, []byte("12345"), 0o600); err != nil {
		t.Fatal(err)
	}
	ghost := filepath.Join(dir, "missing.txt")

	en := newTestEngine(nil)
	e, err := en.Capture(&clip.Snapshot{Files: []string{real, ghost}})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Type != entry.TypeFile {
		t.Fatalf("content type = %q", e.Content.Type)
	}
	files := e.Content.Files
	if len(files) != 2 {
		t.Fatalf("got %d file items", len(files))
	}
	if files[0].Size != 5 {
		t.Fatalf("stat'd size = %d", files[0].Size)
	}
	if files[1].Size != 0 {
		t.Fatal("missing path should keep zero size")
	}
	if e.PreviewText != "[2 files]" {
		t.Fatalf("preview = %q", e.PreviewText)
	}
}

func TestCapturePriorityTextWins(t *testing.T) {
	en := newTestEngine(nil)

	e, err := en.Capture(&clip.Snapshot{
		Text:  []byte("plain"),
		Image: pngBytes(t, 10, 10),
		HTML:  []byte("<b>rich</b>"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Type != entry.TypeText {
		t.Fatalf("content type = %q, want text to win", e.Content.Type)
	}
}

func TestCaptureDisabledFormatSkipsToNext(t *testing.T) {
	en := newTestEngine(func(s *settings.Settings) {
		s.SaveText = false
	})

	e, err := en.Capture(&clip.Snapshot{
		Text: []byte("plain"),
		HTML: []byte("<b>rich</b>"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Content.Type != entry.TypeHTML {
		t.Fatalf("content type = %q, want html after text disabled", e.Content.Type)
	}
}

func TestCaptureNoContent(t *testing.T) {
	en := newTestEngine(nil)

	if _, err := en.Capture(&clip.Snapshot{}); !errors.Is(err, ErrNoContent) {
		t.Fatalf("empty snapshot: err = %v", err)
	}
	if _, err := en.Capture(nil); !errors.Is(err, ErrNoContent) {
		t.Fatalf("nil snapshot: err = %v", err)
	}

	en = newTestEngine(func(s *settings.Settings) {
		s.SaveText = false
	})
	if _, err := en.Capture(&clip.Snapshot{Text: []byte("x")}); !errors.Is(err, ErrNoContent) {
		t.Fatalf("all formats disabled: err = %v", err)
	}
}
