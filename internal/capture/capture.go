// Package capture turns one raw clipboard snapshot into at most one
// normalized entry. Formats are probed in a fixed priority order (plain
// text, raster image, file list, markup) and only the first match is
// kept: a snapshot is treated as single-format even when the OS offers
// several representations at once.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/Ukiyograin/clipboard-master/internal/clip"
	"github.com/Ukiyograin/clipboard-master/internal/entry"
	"github.com/Ukiyograin/clipboard-master/internal/settings"
)

// ErrCapture marks a decode failure for the selected format. The
// clipboard-change event is dropped; no other format is tried in the same
// cycle.
var ErrCapture = errors.New("capture error")

// ErrNoContent is returned when the snapshot carries no format this
// engine is configured to save.
var ErrNoContent = errors.New("no capturable content")

// ThumbnailSize is the bounding box, in pixels, of generated thumbnails.
const ThumbnailSize = 128

// Engine decodes clipboard snapshots according to the live settings.
type Engine struct {
	settings *settings.Store
}

// NewEngine returns an Engine reading its per-capture behaviour from st.
func NewEngine(st *settings.Store) *Engine {
	return &Engine{settings: st}
}

// Capture probes snap in priority order and produces one entry for the
// first format that is present and enabled by the settings. Disabled
// formats are skipped and probing continues. ErrNoContent means nothing
// usable was present; any other error is a decode failure for the format
// that was selected.
func (en *Engine) Capture(snap *clip.Snapshot) (*entry.Entry, error) {
	if snap.Empty() {
		return nil, ErrNoContent
	}
	s := en.settings.Get()

	var (
		e   *entry.Entry
		err error
	)
	switch {
	case len(snap.Text) > 0 && s.SaveText:
		e = entry.New(entry.NewText(string(snap.Text)))
	case len(snap.Image) > 0 && s.SaveImages:
		e, err = en.captureImage(snap.Image, s)
	case len(snap.Files) > 0 && s.SaveFiles:
		e, err = captureFiles(snap.Files)
	case len(snap.HTML) > 0 && s.SaveHTML:
		e = entry.New(entry.NewHTML(string(snap.HTML)))
	default:
		return nil, ErrNoContent
	}
	if err != nil {
		return nil, err
	}

	e.SourceApp = snap.SourceApp
	e.SourceWindow = snap.SourceWindow
	return e, nil
}

// captureImage decodes the raw raster bytes into a pixel buffer,
// re-encodes them as PNG, and renders the thumbnail when image
// compression is enabled.
func (en *Engine) captureImage(raw []byte, s settings.Settings) (*entry.Entry, error) {
	if limit := int64(s.MaxImageSizeMB) * 1024 * 1024; int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: image %d bytes exceeds %d MB limit", ErrCapture, len(raw), s.MaxImageSizeMB)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrCapture, err)
	}
	bounds := img.Bounds()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding png: %v", ErrCapture, err)
	}

	data := entry.ImageData{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: "png",
	}
	if s.CompressImages {
		thumb, err := Thumbnail(img, ThumbnailSize)
		if err != nil {
			return nil, err
		}
		data.Thumbnail = thumb
	}

	e := entry.New(entry.NewImage(data))
	e.PreviewImage = data.Thumbnail
	return e, nil
}

// Thumbnail scales img down to fit a size×size box, preserving aspect
// ratio, and returns it PNG-encoded. Images already inside the box are
// re-encoded unscaled.
func Thumbnail(img image.Image, size int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > size || h > size {
		scale := float64(size) / float64(w)
		if h > w {
			scale = float64(size) / float64(h)
		}
		tw, th := int(float64(w)*scale), int(float64(h)*scale)
		if tw < 1 {
			tw = 1
		}
		if th < 1 {
			th = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding thumbnail: %v", ErrCapture, err)
	}
	return buf.Bytes(), nil
}

// captureFiles stats each dropped path. Paths that cannot be stat'd are
// kept with zero size rather than failing the whole capture.
func captureFiles(paths []string) (*entry.Entry, error) {
	items := make([]entry.FileItem, 0, len(paths))
	for _, p := range paths {
		item := entry.FileItem{Path: p}
		if info, err := os.Stat(p); err == nil {
			item.Size = info.Size()
			item.Modified = info.ModTime().UTC().Truncate(time.Second)
		}
		items = append(items, item)
	}
	return entry.New(entry.NewFileList(items)), nil
}
