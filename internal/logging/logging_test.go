package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json":  FormatJSON,
		"text":  FormatText,
		"tint":  FormatText,
		"human": FormatText,
		"auto":  FormatAuto,
		"":      FormatAuto,
		"bogus": FormatAuto,
		"JSON":  FormatJSON,
	}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != slog.LevelDebug {
		t.Errorf("ParseLevel(debug) = %v", got)
	}
	if got := ParseLevel("nonsense"); got != slog.LevelInfo {
		t.Errorf("ParseLevel(nonsense) = %v, want info fallback", got)
	}
}

func TestConfigureLevelDefaults(t *testing.T) {
	ctx := context.Background()

	Configure(true, "json", "")
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		t.Error("interactive default should enable debug")
	}

	Configure(false, "json", "")
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		t.Error("non-interactive default should not enable debug")
	}
	if !slog.Default().Enabled(ctx, slog.LevelInfo) {
		t.Error("non-interactive default should enable info")
	}

	Configure(false, "json", "error")
	if slog.Default().Enabled(ctx, slog.LevelWarn) {
		t.Error("explicit level must override the default")
	}
}

func TestQuiet(t *testing.T) {
	ctx := context.Background()

	Quiet()
	if slog.Default().Enabled(ctx, slog.LevelInfo) {
		t.Error("quiet mode should suppress info")
	}
	if !slog.Default().Enabled(ctx, slog.LevelWarn) {
		t.Error("quiet mode should keep warnings")
	}
}
