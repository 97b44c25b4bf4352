package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
)

const scriptSystemPrompt = `You are a scriptwriter for narrated explainer videos. Given an article, split it into short narrated sections.

Respond with ONLY valid JSON, no preamble and no markdown fences:
{"title": "...", "sections": [{"title": "...", "narration": "...", "slide_prompt": "..." or null, "source_image_url": "..." or null}]}

Each section's narration must be 1-4 spoken sentences. Set slide_prompt to a detailed image generation prompt, or source_image_url to a real image URL from the article, or leave both null.`

// ScriptProvider turns a source article into an ordered list of script
// sections by fetching the page and asking a chat-completion endpoint to
// structure it.
type ScriptProvider struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewScriptProvider(cfg *config.Config, logger logger.Logger) *ScriptProvider {
	return &ScriptProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type scriptJSON struct {
	Title    string        `json:"title"`
	Sections []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Title          string `json:"title"`
	Narration      string `json:"narration"`
	SlidePrompt    string `json:"slide_prompt"`
	SourceImageURL string `json:"source_image_url"`
}

// Generate fetches the article and produces the ordered sections. Fetch
// failures and model failures are distinguishable through the error
// taxonomy.
func (p *ScriptProvider) Generate(ctx context.Context, sourceURL string) (string, []models.ScriptSection, error) {
	article, err := p.fetchArticle(ctx, sourceURL)
	if err != nil {
		return "", nil, errors.Wrapf(ErrContentFetch, "%s: %v", sourceURL, err)
	}

	title, sections, err := p.writeScript(ctx, article)
	if err != nil {
		return "", nil, errors.Wrapf(ErrScriptGeneration, "%v", err)
	}
	if len(sections) == 0 {
		return "", nil, errors.Wrap(ErrScriptGeneration, "model returned no sections")
	}
	p.logger.Infof("script generated: %q, %d sections", title, len(sections))
	return title, sections, nil
}

func (p *ScriptProvider) fetchArticle(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; article2video/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty response body")
	}
	return string(body), nil
}

func (p *ScriptProvider) writeScript(ctx context.Context, article string) (string, []models.ScriptSection, error) {
	if p.cfg.Pipeline.ScriptAPIKey == "" {
		return "", nil, fmt.Errorf("script api key not configured")
	}

	reqBody := chatRequest{
		Model: p.cfg.Pipeline.ScriptModel,
		Messages: []chatMessage{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: article},
		},
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Pipeline.ScriptAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.Pipeline.ScriptAPIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", nil, fmt.Errorf("unparseable model response: %v", err)
	}
	if chatResp.Error != nil {
		return "", nil, fmt.Errorf("model error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", nil, fmt.Errorf("model returned no choices")
	}

	content := stripCodeFences(chatResp.Choices[0].Message.Content)
	var script scriptJSON
	if err := json.Unmarshal([]byte(content), &script); err != nil {
		return "", nil, fmt.Errorf("unparseable script JSON: %v", err)
	}

	sections := make([]models.ScriptSection, 0, len(script.Sections))
	for _, s := range script.Sections {
		if strings.TrimSpace(s.Narration) == "" {
			continue
		}
		sections = append(sections, models.ScriptSection{
			Title:     s.Title,
			Narration: strings.TrimSpace(s.Narration),
			Visual:    sectionVisual(s),
		})
	}
	return script.Title, sections, nil
}

// sectionVisual collapses the model's two nullable fields into the tagged
// variant. A generated prompt wins when the model set both.
func sectionVisual(s sectionJSON) models.Visual {
	switch {
	case s.SlidePrompt != "":
		return models.GeneratedSlide(s.SlidePrompt)
	case s.SourceImageURL != "":
		return models.SourcedImage(s.SourceImageURL)
	default:
		return models.NoVisual()
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
