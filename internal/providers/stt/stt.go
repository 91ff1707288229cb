package stt

import (
	"context"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (analysis.Transcript, error)
	Close() error
}
