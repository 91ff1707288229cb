package emotion

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

// minDominantConfidence: below this the classifier is guessing, so the
// dominant label falls back to neutral.
const minDominantConfidence = 0.05

const maxResponseBytes = 1 << 20

// HTTPClassifier calls an emotion-inference sidecar over plain HTTP. The
// sidecar owns the face-detection model; this adapter owns normalization.
type HTTPClassifier struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClassifier{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

type classifyResponse struct {
	Emotions        map[string]float64 `json:"emotions"`
	DominantEmotion string             `json:"dominant_emotion"`
	FaceDetected    bool               `json:"face_detected"`
	BoundingBox     []int              `json:"bounding_box"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, image []byte) (analysis.FrameEmotionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/classify", bytes.NewReader(image))
	if err != nil {
		return analysis.FrameEmotionResult{}, err
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.Client.Do(req)
	if err != nil {
		return analysis.FrameEmotionResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return analysis.FrameEmotionResult{}, fmt.Errorf("classifier returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return analysis.FrameEmotionResult{}, err
	}

	var cr classifyResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return analysis.FrameEmotionResult{}, err
	}

	now := time.Now().UTC()
	if !cr.FaceDetected || len(cr.Emotions) == 0 {
		return analysis.FrameEmotionResult{Timestamp: now}, nil
	}

	emotions, dominant, confidence := normalize(cr.Emotions, cr.DominantEmotion)

	return analysis.FrameEmotionResult{
		Emotions:        emotions,
		DominantEmotion: dominant,
		Confidence:      confidence,
		FaceDetected:    true,
		BoundingBox:     cr.BoundingBox,
		Timestamp:       now,
	}, nil
}

// normalize rescales raw scores to sum to 1 and applies the neutral
// fallback when the dominant confidence is negligible.
func normalize(raw map[string]float64, dominant string) (map[string]float64, string, float64) {
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total <= 0 {
		return nil, "", 0
	}

	out := make(map[string]float64, len(raw))
	best := ""
	bestScore := -1.0
	for label, v := range raw {
		out[label] = v / total
		if out[label] > bestScore {
			bestScore = out[label]
			best = label
		}
	}
	if dominant == "" || out[dominant] == 0 {
		dominant = best
	}
	if out[dominant] < minDominantConfidence {
		dominant = "neutral"
	}
	return out, dominant, out[dominant]
}
