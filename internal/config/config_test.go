package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)

	s, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtrack.yaml")
	body := `subtitle_delay: 0.5
preferred_language: ja,en
blacklist: signs
customization:
  enabled: true
  font_name: Roboto
  primary_color: FFFF00
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, s.SubtitleDelay)
	assert.Equal(t, "ja,en", s.PreferredLanguage)
	assert.Equal(t, "signs", s.Blacklist)
	assert.True(t, s.Customization.Enabled)
	assert.Equal(t, "Roboto", s.Customization.FontName)
	assert.Equal(t, "FFFF00", s.Customization.PrimaryColor)
	// untouched keys keep their defaults
	assert.Equal(t, 52, s.Customization.FontSize)
	assert.Equal(t, "000000", s.Customization.OutlineColor)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUBTRACK_PREFERRED_LANGUAGE", "de")
	t.Setenv("SUBTRACK_CUSTOMIZATION_FONT_SIZE", "40")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "de", s.PreferredLanguage)
	assert.Equal(t, 40, s.Customization.FontSize)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subtitle_delay: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtrack.yaml")
	store := NewStore(path)

	want := Defaults()
	want.SubtitleDelay = -1.25
	want.PreferredLanguage = "en"
	want.Customization.Enabled = true
	want.Customization.Opacity = 0.5

	require.NoError(t, store.Save(want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subtitle_delay: 0\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(s Settings, err error) {
			if err == nil {
				got <- s
			}
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("subtitle_delay: 2\n"), 0o644))

	select {
	case s := <-got:
		assert.Equal(t, 2.0, s.SubtitleDelay)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	require.NoError(t, <-done)
}
