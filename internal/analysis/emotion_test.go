package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmotionsEmptyTimeline(t *testing.T) {
	s := SummarizeEmotions(nil)
	assert.True(t, s.Empty())
	assert.Zero(t, s.TotalFrames)
}

func TestSummarizeEmotionsNoValidEntries(t *testing.T) {
	timeline := []FrameEmotionResult{
		{FaceDetected: false},
		{FaceDetected: true}, // face but empty mapping
		{FaceDetected: false, Emotions: map[string]float64{"happy": 1}},
	}

	s := SummarizeEmotions(timeline)
	assert.True(t, s.Empty(), "no zero-filled summary for invalid-only timelines")
	assert.Equal(t, 3, s.TotalFrames)
	assert.Zero(t, s.FramesWithFace)
}

func TestSummarizeEmotionsAverages(t *testing.T) {
	timeline := []FrameEmotionResult{
		{FaceDetected: true, Emotions: map[string]float64{"happy": 0.8, "neutral": 0.2}},
		{FaceDetected: true, Emotions: map[string]float64{"happy": 0.4, "neutral": 0.6}},
		{FaceDetected: false},
	}

	s := SummarizeEmotions(timeline)
	require.False(t, s.Empty())
	assert.InDelta(t, 0.6, s.Averages["happy"], 1e-9)
	assert.InDelta(t, 0.4, s.Averages["neutral"], 1e-9)
	assert.Equal(t, "happy", s.Dominant)
	assert.InDelta(t, 0.6, s.Confidence, 1e-9)
	assert.Equal(t, 3, s.TotalFrames)
	assert.Equal(t, 2, s.FramesWithFace)
	assert.InDelta(t, 2.0/3.0, s.DetectionRate, 1e-9)
}
