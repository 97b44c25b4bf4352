package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                                 {}
func (nopLogger) Debug(args ...interface{})                   {}
func (nopLogger) Debugf(template string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})                    {}
func (nopLogger) Infof(template string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                    {}
func (nopLogger) Warnf(template string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})                   {}
func (nopLogger) Errorf(template string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})                   {}
func (nopLogger) Fatalf(template string, args ...interface{}) {}

func chatCompletionStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func articleStub(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func scriptConfig(apiURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.ScriptAPIURL = apiURL
	cfg.Pipeline.ScriptAPIKey = "test-key"
	cfg.Pipeline.ScriptModel = "test-model"
	return cfg
}

func TestGenerate_ParsesScriptSections(t *testing.T) {
	article := articleStub("<html><body>How compilers work.</body></html>")
	defer article.Close()

	api := chatCompletionStub(t, `{
		"title": "How Compilers Work",
		"sections": [
			{"title": "Intro", "narration": "Compilers translate source code.", "slide_prompt": "a compiler diagram"},
			{"title": "Parsing", "narration": "Parsing builds a tree.", "source_image_url": "https://example.com/tree.png"},
			{"title": "Empty", "narration": "   "},
			{"title": "Outro", "narration": "That is the gist."}
		]
	}`)
	defer api.Close()

	p := NewScriptProvider(scriptConfig(api.URL), nopLogger{})
	title, sections, err := p.Generate(context.Background(), article.URL)
	require.NoError(t, err)
	require.Equal(t, "How Compilers Work", title)

	// Blank narrations are dropped, order is preserved.
	require.Len(t, sections, 3)
	require.Equal(t, "Compilers translate source code.", sections[0].Narration)
	require.Equal(t, models.VisualGenerated, sections[0].Visual.Kind)
	require.Equal(t, "a compiler diagram", sections[0].Visual.Prompt)
	require.Equal(t, models.VisualSourced, sections[1].Visual.Kind)
	require.Equal(t, models.VisualNone, sections[2].Visual.Kind)
}

func TestGenerate_HandlesMarkdownFencedResponse(t *testing.T) {
	article := articleStub("some article")
	defer article.Close()

	api := chatCompletionStub(t, "```json\n{\"title\": \"T\", \"sections\": [{\"narration\": \"One phrase.\"}]}\n```")
	defer api.Close()

	p := NewScriptProvider(scriptConfig(api.URL), nopLogger{})
	title, sections, err := p.Generate(context.Background(), article.URL)
	require.NoError(t, err)
	require.Equal(t, "T", title)
	require.Len(t, sections, 1)
}

func TestGenerate_FetchFailureClassified(t *testing.T) {
	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer article.Close()

	p := NewScriptProvider(scriptConfig("http://unused"), nopLogger{})
	_, _, err := p.Generate(context.Background(), article.URL)
	require.ErrorIs(t, err, ErrContentFetch)
}

func TestGenerate_EmptyScriptClassified(t *testing.T) {
	article := articleStub("some article")
	defer article.Close()

	api := chatCompletionStub(t, `{"title": "T", "sections": []}`)
	defer api.Close()

	p := NewScriptProvider(scriptConfig(api.URL), nopLogger{})
	_, _, err := p.Generate(context.Background(), article.URL)
	require.ErrorIs(t, err, ErrScriptGeneration)
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	article := articleStub("some article")
	defer article.Close()

	cfg := scriptConfig("http://unused")
	cfg.Pipeline.ScriptAPIKey = ""

	p := NewScriptProvider(cfg, nopLogger{})
	_, _, err := p.Generate(context.Background(), article.URL)
	require.ErrorIs(t, err, ErrScriptGeneration)
}

func TestSectionVisual_PromptWinsOverSourcedImage(t *testing.T) {
	v := sectionVisual(sectionJSON{SlidePrompt: "a diagram", SourceImageURL: "https://example.com/x.png"})
	require.Equal(t, models.VisualGenerated, v.Kind)
	require.Equal(t, "a diagram", v.Prompt)
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "  {\"a\":1}  ", want: `{"a":1}`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, stripCodeFences(tc.in))
	}
}
