package voice

import (
	"context"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

type Analyzer interface {
	// Analyze extracts acoustic features from a complete recording.
	Analyze(ctx context.Context, audio []byte) (analysis.VoiceAnalysis, error)
}
