// Package settings holds the mutable service configuration: limits,
// per-type save toggles, storage paths, hotkeys and UI preferences.
//
// The settings document is one JSON file under the per-user config
// directory, created with defaults on first run and rewritten wholesale on
// every update. At runtime a single Settings value lives in a Store with
// shared-read / exclusive-write access.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrConfig marks configuration failures: unreadable config directory or a
// malformed settings document.
var ErrConfig = errors.New("config error")

// Hotkeys are the key bindings a host UI registers. The core stores and
// round-trips them; it does not register keys itself.
type Hotkeys struct {
	ShowWindow string `json:"show_window"`
	PinItem    string `json:"pin_item"`
	Search     string `json:"search"`
	NextItem   string `json:"next_item"`
	PrevItem   string `json:"prev_item"`
}

// UI carries host-UI presentation preferences, opaque to the core.
type UI struct {
	Theme          string  `json:"theme"`
	Opacity        float64 `json:"opacity"`
	AnimationSpeed int     `json:"animation_speed"`
	ShowPreview    bool    `json:"show_preview"`
	ShowThumbnails bool    `json:"show_thumbnails"`
	ThumbnailSize  int     `json:"thumbnail_size"`
	FontSize       int     `json:"font_size"`
}

// Settings is the full configuration document.
type Settings struct {
	MaxItems       int  `json:"max_items"`
	KeepDays       int  `json:"keep_days"`
	MaxImageSizeMB int  `json:"max_image_size_mb"`
	CompressImages bool `json:"compress_images"`
	SaveText       bool `json:"save_text"`
	SaveImages     bool `json:"save_images"`
	SaveFiles      bool `json:"save_files"`
	SaveHTML       bool `json:"save_html"`
	AutoCleanup    bool `json:"auto_cleanup"`
	StartupDelayMS int  `json:"startup_delay_ms"`

	DatabasePath string `json:"database_path"`
	CachePath    string `json:"cache_path"`

	Hotkeys Hotkeys `json:"hotkeys"`
	UI      UI      `json:"ui"`
}

// Default returns the settings used on first run.
func Default() Settings {
	dataDir := defaultDataDir()
	return Settings{
		MaxItems:       1000,
		KeepDays:       90,
		MaxImageSizeMB: 10,
		CompressImages: true,
		SaveText:       true,
		SaveImages:     true,
		SaveFiles:      true,
		SaveHTML:       true,
		AutoCleanup:    true,
		StartupDelayMS: 1000,
		DatabasePath:   filepath.Join(dataDir, "data", "clipboard.db"),
		CachePath:      filepath.Join(dataDir, "cache"),
		Hotkeys: Hotkeys{
			ShowWindow: "Ctrl+Shift+V",
			PinItem:    "Ctrl+Shift+P",
			Search:     "Ctrl+Shift+F",
			NextItem:   "Ctrl+Down",
			PrevItem:   "Ctrl+Up",
		},
		UI: UI{
			Theme:          "System",
			Opacity:        0.95,
			AnimationSpeed: 200,
			ShowPreview:    true,
			ShowThumbnails: true,
			ThumbnailSize:  64,
			FontSize:       14,
		},
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "clipboard-master")
}

// DefaultPath returns the config file location under the per-user config
// directory.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.json")
}

// Load reads the settings document at path. If the file does not exist it
// writes the defaults back and returns them; a malformed document or an
// unwritable directory is an ErrConfig.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
		}
		s := Default()
		if err := Save(path, s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: parsing %s: %v", ErrConfig, path, err)
	}
	s.Validate()
	return s, nil
}

// Save writes the settings document to path, creating the directory if
// needed. The file is rewritten wholesale.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating config dir: %v", ErrConfig, err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding settings: %v", ErrConfig, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrConfig, path, err)
	}
	return nil
}

// Validate clamps non-positive numeric limits back to their defaults.
func (s *Settings) Validate() {
	def := Default()
	if s.MaxItems <= 0 {
		s.MaxItems = def.MaxItems
	}
	if s.KeepDays <= 0 {
		s.KeepDays = def.KeepDays
	}
	if s.MaxImageSizeMB <= 0 {
		s.MaxImageSizeMB = def.MaxImageSizeMB
	}
	if s.StartupDelayMS < 0 {
		s.StartupDelayMS = def.StartupDelayMS
	}
	if s.DatabasePath == "" {
		s.DatabasePath = def.DatabasePath
	}
	if s.CachePath == "" {
		s.CachePath = def.CachePath
	}
}

// Store holds the single live Settings value behind a reader-writer lock:
// many concurrent readers (the monitor checks it on every capture), one
// writer at a time.
type Store struct {
	mu sync.RWMutex
	s  Settings
}

// NewStore returns a Store seeded with s.
func NewStore(s Settings) *Store {
	return &Store{s: s}
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Update replaces the current settings.
func (st *Store) Update(s Settings) {
	st.mu.Lock()
	st.s = s
	st.mu.Unlock()
}
