package emotion

import (
	"context"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

type Classifier interface {
	// Classify runs face/emotion detection on one decoded frame.
	Classify(ctx context.Context, image []byte) (analysis.FrameEmotionResult, error)
}
