package core

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Ukiyograin/clipboard-master/internal/settings"
)

// The methods below form the control surface a host application drives
// the core through. All payloads are UTF-8 JSON documents, and failures
// surface as a boolean rather than an error value, since the boundary is
// meant to be bridged to foreign callers that cannot unwind Go errors.

// SettingsJSON returns the current settings as a JSON document.
func (c *Core) SettingsJSON() (string, bool) {
	data, err := json.Marshal(c.settings.Get())
	if err != nil {
		slog.Error("failed to serialise settings", "err", err)
		return "", false
	}
	return string(data), true
}

// UpdateSettingsJSON validates doc by deserialisation and, if well
// formed, applies and persists it. A malformed document leaves the prior
// settings unchanged and reports failure.
func (c *Core) UpdateSettingsJSON(doc string) bool {
	s := settings.Default()
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		slog.Error("malformed settings document", "err", err)
		return false
	}
	if err := c.UpdateSettings(s); err != nil {
		slog.Error("failed to apply settings", "err", err)
		return false
	}
	return true
}

// RecentJSON returns up to limit entries, newest first, as a JSON array.
func (c *Core) RecentJSON(limit int) (string, bool) {
	entries, err := c.Recent(context.Background(), limit)
	if err != nil {
		slog.Error("failed to load recent entries", "err", err)
		return "", false
	}
	if entries == nil {
		return "[]", true
	}
	data, err := json.Marshal(entries)
	if err != nil {
		slog.Error("failed to serialise entries", "err", err)
		return "", false
	}
	return string(data), true
}
