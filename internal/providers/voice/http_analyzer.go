package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

const maxResponseBytes = 1 << 20

// HTTPAnalyzer calls an acoustic-feature sidecar (pitch, energy, spectral
// stats) over plain HTTP with the raw recording as the request body.
type HTTPAnalyzer struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPAnalyzer(baseURL string, timeout time.Duration) *HTTPAnalyzer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnalyzer{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, audio []byte) (analysis.VoiceAnalysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/analyze", bytes.NewReader(audio))
	if err != nil {
		return analysis.VoiceAnalysis{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.Client.Do(req)
	if err != nil {
		return analysis.VoiceAnalysis{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analysis.VoiceAnalysis{}, fmt.Errorf("voice analyzer returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return analysis.VoiceAnalysis{}, err
	}

	var out analysis.VoiceAnalysis
	if err := json.Unmarshal(body, &out); err != nil {
		return analysis.VoiceAnalysis{}, err
	}
	return out, nil
}
