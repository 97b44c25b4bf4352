package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/models"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

const defaultSlideAPIURL = "https://image.pollinations.ai/prompt"

// SlideGenerator produces one still image per script section, either by
// asking the image-generation endpoint (prompt-in-URL) or by downloading
// the article's own image.
type SlideGenerator struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewSlideGenerator(cfg *config.Config, logger logger.Logger) *SlideGenerator {
	return &SlideGenerator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		logger:     logger,
	}
}

// Generate writes the slide for a section to outPath. Sections with no
// visual case report an error so the stage records the gap; the composer
// later extends the previous slide over it.
func (g *SlideGenerator) Generate(ctx context.Context, visual models.Visual, seed int, outPath string) (string, error) {
	var imageURL string
	switch visual.Kind {
	case models.VisualGenerated:
		base := g.cfg.Pipeline.SlideAPIURL
		if base == "" {
			base = defaultSlideAPIURL
		}
		imageURL = fmt.Sprintf("%s/%s?width=1920&height=1080&nologo=true&seed=%d",
			base, url.PathEscape(visual.Prompt), seed)
	case models.VisualSourced:
		imageURL = visual.ImageURL
	default:
		return "", errors.Wrap(ErrSlideGeneration, "section has no visual")
	}

	if err := g.downloadImage(ctx, imageURL, outPath); err != nil {
		return "", errors.Wrapf(ErrSlideGeneration, "%v", err)
	}
	if !utils.NonZeroFile(outPath) {
		return "", errors.Wrapf(ErrSlideGeneration, "empty image file %s", outPath)
	}
	return outPath, nil
}

func (g *SlideGenerator) downloadImage(ctx context.Context, imageURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; article2video/1.0)")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, imageURL)
	}

	out, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
