package generate

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

// Renderer invokes the external rendering engine on a persisted composition
// file. Only the exit status and the presence of a non-empty output file are
// interpreted here; the renderer's internals are its own business.
type Renderer struct {
	cfg    *config.Config
	logger logger.Logger
}

func NewRenderer(cfg *config.Config, logger logger.Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logger}
}

func (r *Renderer) Render(ctx context.Context, compositionPath, outputPath string) error {
	renderCmd := strings.TrimSpace(r.cfg.Pipeline.RenderCommand)
	if renderCmd == "" {
		renderCmd = "a2v-render"
	}

	cmd := exec.CommandContext(ctx, renderCmd,
		"--composition", compositionPath,
		"--output", outputPath,
	)
	cmd.Stderr = os.Stderr

	r.logger.Infof("rendering %s -> %s", compositionPath, outputPath)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(ErrRender, "renderer: %v", err)
	}
	if !utils.NonZeroFile(outputPath) {
		return errors.Wrapf(ErrRender, "renderer produced no output at %s", outputPath)
	}
	return nil
}
