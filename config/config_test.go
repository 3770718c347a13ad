package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/scansurface-go/domain/camera"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad_JSONAndYAML(t *testing.T) {
	for _, name := range []string{"scanner.json", "scanner.yaml", "scanner.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := DefaultConfig()
			want.Camera = "front"
			want.Torch = true
			want.Tracking = "off"
			want.TrackingColor = "#ff0000"
			want.HistorySize = 5
			require.NoError(t, want.Save(path))

			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_YAMLPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera: rear\ntracking_width: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, camera.SelectorRear, cfg.Selector())
	assert.Equal(t, 5.0, cfg.TrackingWidth)
	assert.Equal(t, 500, cfg.IdleMinDelayMs)
	assert.True(t, cfg.Enabled)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{
		Camera:             "webcam",
		Tracking:           "FALSE",
		TrackingColor:      "green",
		TrackingWidth:      -1,
		TrackingMinDelayMs: 100,
		IdleMinDelayMs:     10,
	}
	err := cfg.Validate()
	require.ErrorIs(t, err, camera.ErrUnknownSelector)
	assert.Equal(t, "auto", cfg.Camera)
	assert.Equal(t, "off", cfg.Tracking)
	assert.False(t, cfg.TrackingEnabled())
	assert.Equal(t, "#32cd32", cfg.TrackingColor)
	assert.Equal(t, 3.0, cfg.TrackingWidth)
	assert.Equal(t, 640, cfg.DisplayWidth)
	assert.Equal(t, 100, cfg.IdleMinDelayMs, "idle delay never undercuts tracking delay")
	assert.Equal(t, 20, cfg.HistorySize)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#32cd32")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0xff}, c)

	c, err = ParseHexColor("f0a")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x00, B: 0xaa, A: 0xff}, c)

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}
