package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.ass")
	require.NoError(t, os.WriteFile(path, []byte("[Script Info]\r\nTitle: x\r\n"), 0o644))

	f := New()

	got, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "[Script Info]\nTitle: x\n", got)

	got, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "[Script Info]\nTitle: x\n", got)
}

func TestFetchEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ass")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchMissingFile(t *testing.T) {
	_, err := New().Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.srt"))
	assert.Error(t, err)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/en.vtt":
			_, _ = w.Write([]byte("WEBVTT\r\n\r\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New()

	got, err := f.Fetch(context.Background(), srv.URL+"/en.vtt")
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\n", got)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.vtt")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestFetchSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	f := New()
	f.MaxBytes = 16

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrTooLarge))

	path := filepath.Join(t.TempDir(), "big.srt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("y", 64)), 0o644))
	_, err = f.Fetch(context.Background(), path)
	assert.True(t, errors.Is(err, ErrTooLarge))
}
