package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeSpeechBasicMetrics(t *testing.T) {
	tr := Transcript{
		Text:     "the quick brown fox jumps over the lazy dog again",
		Duration: 5,
		Segments: []Segment{{Start: 0, End: 2}, {Start: 3, End: 5}},
	}

	sa := SummarizeSpeech(tr)
	assert.Equal(t, 10, sa.WordCount)
	assert.InDelta(t, 120.0, sa.WordsPerMinute, 1e-9)
	assert.Equal(t, 1, sa.PauseCount)
	assert.InDelta(t, 1.0, sa.AveragePauseDuration, 1e-9)
}

func TestSummarizeSpeechZeroDuration(t *testing.T) {
	sa := SummarizeSpeech(Transcript{Text: "hello world", Duration: 0})
	assert.Equal(t, 2, sa.WordCount)
	assert.Zero(t, sa.WordsPerMinute)
}

func TestCountFillersWordBoundaries(t *testing.T) {
	// "likely" and "sober" must not match "like" and "so".
	tr := Transcript{
		Text:     "um I likely think, uh, that sober people actually agree you know",
		Duration: 60,
	}
	sa := SummarizeSpeech(tr)
	// um, uh, actually, "you know"
	assert.Equal(t, 4, sa.FillerWordCount)
}

func TestSummarizeSpeechShortPausesIgnored(t *testing.T) {
	tr := Transcript{
		Text:     "a b c",
		Duration: 3,
		Segments: []Segment{{Start: 0, End: 1}, {Start: 1.3, End: 2}, {Start: 2.2, End: 3}},
	}
	sa := SummarizeSpeech(tr)
	assert.Zero(t, sa.PauseCount)
	assert.Zero(t, sa.AveragePauseDuration)
}

func TestFillerPercentage(t *testing.T) {
	words := append([]string{"um", "uh"}, strings.Fields(strings.Repeat("word ", 18))...)
	tr := Transcript{Text: strings.Join(words, " "), Duration: 10}
	sa := SummarizeSpeech(tr)
	assert.Equal(t, 20, sa.WordCount)
	assert.InDelta(t, 10.0, sa.FillerPercentage, 1e-9)
}
