package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"diffusedbrush/internal/config"
	"diffusedbrush/internal/logging"
	"diffusedbrush/internal/services"
)

// ErrContentRejected is returned by a Generator when the service's safety
// filter refused the prompt. It wraps services.ErrContentRejected.
var ErrContentRejected = fmt.Errorf("generation: %w", services.ErrContentRejected)

// Params are the engine settings for one generation request.
type Params struct {
	Engine   string
	Steps    int
	CFGScale float64
	Width    int
	Height   int
	Samples  int
}

// ParamsFrom extracts generation parameters from the application config.
func ParamsFrom(cfg *config.Config) Params {
	s := cfg.Stability
	return Params{
		Engine:   s.Engine,
		Steps:    s.Steps,
		CFGScale: s.CFGScale,
		Width:    s.Width,
		Height:   s.Height,
		Samples:  s.Samples,
	}
}

// Image is one generated artifact.
type Image struct {
	Data        []byte
	ContentType string
	Seed        int64
}

// Generator produces an image for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) (Image, error)
}

// GenerateWithRetry calls gen up to maxAttempts times, retrying only when the
// prompt was rejected on content grounds. Exhausting the attempts yields a
// transient error so the submission stays queued for a later run.
func GenerateWithRetry(ctx context.Context, gen Generator, prompt string, params Params, maxAttempts int, logger *slog.Logger) (Image, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		image, err := gen.Generate(ctx, prompt, params)
		if err == nil {
			return image, nil
		}
		if !errors.Is(err, services.ErrContentRejected) {
			return Image{}, err
		}
		logging.WarnWithContext(logger, "generation rejected by content filter", "generation_rejected",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", maxAttempts),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the prompt keywords or subject tripped the safety filter"),
			logging.String(logging.FieldImpact, "retrying with the same prompt"),
		)
	}
	return Image{}, services.Wrap(services.ErrTransient, "generation", "generate",
		fmt.Sprintf("Content filter rejected the prompt %d times", maxAttempts), services.ErrContentRejected)
}
