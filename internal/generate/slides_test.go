package generate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
)

func slideConfig(apiURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.SlideAPIURL = apiURL
	return cfg
}

func TestSlideGenerate_GeneratedPromptInURL(t *testing.T) {
	var requested *url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer srv.Close()

	g := NewSlideGenerator(slideConfig(srv.URL), nopLogger{})
	out := filepath.Join(t.TempDir(), "slide_000.jpg")

	got, err := g.Generate(context.Background(), models.GeneratedSlide("a red bridge at dusk"), 7, out)
	require.NoError(t, err)
	require.Equal(t, out, got)

	// The prompt travels in the path, the knobs in the query.
	require.Contains(t, requested.Path, "a red bridge at dusk")
	require.Equal(t, "1920", requested.Query().Get("width"))
	require.Equal(t, "1080", requested.Query().Get("height"))
	require.Equal(t, "7", requested.Query().Get("seed"))
}

func TestSlideGenerate_SourcedImageDownloaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "photo.png") {
			_, _ = w.Write([]byte("pngdata"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewSlideGenerator(slideConfig("http://unused"), nopLogger{})
	out := filepath.Join(t.TempDir(), "slide_001.jpg")

	got, err := g.Generate(context.Background(), models.SourcedImage(srv.URL+"/photo.png"), 0, out)
	require.NoError(t, err)
	require.Equal(t, out, got)
}

func TestSlideGenerate_NoVisualRejected(t *testing.T) {
	g := NewSlideGenerator(slideConfig("http://unused"), nopLogger{})

	_, err := g.Generate(context.Background(), models.NoVisual(), 0, filepath.Join(t.TempDir(), "x.jpg"))
	require.ErrorIs(t, err, ErrSlideGeneration)
}

func TestSlideGenerate_EmptyDownloadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with an empty body.
	}))
	defer srv.Close()

	g := NewSlideGenerator(slideConfig(srv.URL), nopLogger{})
	_, err := g.Generate(context.Background(), models.GeneratedSlide("p"), 0, filepath.Join(t.TempDir(), "x.jpg"))
	require.ErrorIs(t, err, ErrSlideGeneration)
}

func TestSlideGenerate_UpstreamErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewSlideGenerator(slideConfig(srv.URL), nopLogger{})
	_, err := g.Generate(context.Background(), models.GeneratedSlide("p"), 0, filepath.Join(t.TempDir(), "x.jpg"))
	require.ErrorIs(t, err, ErrSlideGeneration)
}
