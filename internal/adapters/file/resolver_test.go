package file

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"thumbs3/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "My Cat.photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	r := NewResolver(t.TempDir())

	got, err := r.Resolve(t.Context(), src)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceImage{
		Path:     src,
		Origin:   domain.Local,
		BaseName: "My Cat.photo",
		Filename: "My Cat.photo.jpg",
	}, got)
}

func TestResolveRemote(t *testing.T) {
	payload := []byte("remote image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write(payload)
		assert.NoError(t, err)
	}))
	defer srv.Close()

	tempDir := t.TempDir()
	r := NewResolver(tempDir)

	got, err := r.Resolve(t.Context(), srv.URL+"/images/Summer%20Trip.JPG?size=large")
	require.NoError(t, err)

	assert.Equal(t, domain.Remote, got.Origin)
	assert.Equal(t, "Summer Trip", got.BaseName)
	assert.Equal(t, "Summer Trip.JPG", got.Filename)
	assert.Equal(t, tempDir, filepath.Dir(got.Path))
	assert.Equal(t, ".jpg", filepath.Ext(got.Path))

	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestResolveRemoteCreatesTempFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("png"))
	}))
	defer srv.Close()

	tempDir := filepath.Join(t.TempDir(), "staging")

	got, err := NewResolver(tempDir).Resolve(t.Context(), srv.URL+"/cat.png")
	require.NoError(t, err)

	assert.Equal(t, tempDir, filepath.Dir(got.Path))
	assert.FileExists(t, got.Path)
}

func TestResolveFailedDownloadLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tempDir := t.TempDir()

	_, err := NewResolver(tempDir).Resolve(t.Context(), srv.URL+"/cat.jpg")
	require.ErrorIs(t, err, domain.ErrDownload)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		arg  string
	}{
		{
			name: "not found",
			arg:  srv.URL + "/missing.jpg",
		},
		{
			name: "missing local file",
			arg:  filepath.Join(t.TempDir(), "nope.jpg"),
		},
		{
			name: "unsupported scheme",
			arg:  "ftp://example.com/cat.jpg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewResolver(t.TempDir()).Resolve(t.Context(), tc.arg)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDownload)
			assert.Equal(t, domain.ExitDownload, domain.ExitCode(err))
		})
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "plain",
			url:  "http://example.com/a/b/cat.jpg",
			want: "cat.jpg",
		},
		{
			name: "percent encoded",
			url:  "http://example.com/a/caf%C3%A9%20noir.png",
			want: "café noir.png",
		},
		{
			name: "query dropped",
			url:  "https://example.com/cat.jpg?w=10",
			want: "cat.jpg",
		},
		{
			name: "no path",
			url:  "https://example.com",
			want: "",
		},
		{
			name: "trailing slash",
			url:  "https://example.com/",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilenameFromURL(tc.url))
		})
	}
}
