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

// Synthesizer produces one audio file per narration text by shelling out to
// the configured TTS engine. edge-tts is the default engine; any command
// accepting --text and --output works.
type Synthesizer struct {
	cfg    *config.Config
	logger logger.Logger
}

func NewSynthesizer(cfg *config.Config, logger logger.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, logger: logger}
}

// Synthesize writes the spoken form of text to outPath. A zero-byte output
// file is a failure even when the engine exited cleanly.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) (string, error) {
	ttsCmd := strings.TrimSpace(s.cfg.Pipeline.TTSCommand)
	if ttsCmd == "" {
		ttsCmd = "edge-tts"
	}

	var cmd *exec.Cmd
	switch {
	case ttsCmd == "edge-tts":
		voice := s.cfg.Pipeline.TTSVoice
		if voice == "" {
			voice = "en-US-GuyNeural"
		}
		cmd = exec.CommandContext(ctx, "edge-tts",
			"--voice", voice,
			"--text", text,
			"--write-media", outPath,
		)
	case strings.HasSuffix(ttsCmd, ".py"):
		cmd = exec.CommandContext(ctx, "python3", ttsCmd,
			"--text", text,
			"--output", outPath,
		)
	default:
		cmd = exec.CommandContext(ctx, ttsCmd,
			"--text", text,
			"--output", outPath,
		)
	}

	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(ErrSynthesis, "tts engine: %v", err)
	}
	if !utils.NonZeroFile(outPath) {
		return "", errors.Wrapf(ErrSynthesis, "engine produced empty file %s", outPath)
	}
	return outPath, nil
}
