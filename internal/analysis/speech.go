package analysis

import (
	"math"
	"strings"
)

// Segment is one contiguous stretch of recognized speech, in seconds from
// the start of the recording.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the transcriber's output for a full recording.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
}

// SpeechAnalysis holds pacing and filler metrics derived from a transcript.
type SpeechAnalysis struct {
	WordCount            int     `json:"word_count"`
	WordsPerMinute       float64 `json:"words_per_minute"`
	FillerWordCount      int     `json:"filler_word_count"`
	FillerPercentage     float64 `json:"filler_percentage"`
	PauseCount           int     `json:"pause_count"`
	AveragePauseDuration float64 `json:"average_pause_duration"`
	TotalSpeakingTime    float64 `json:"total_speaking_time"`
}

// fillerWords are matched against whole words only; "likely" is not "like".
var fillerWords = map[string]bool{
	"um": true, "uh": true, "like": true, "so": true,
	"basically": true, "actually": true,
}

const pauseThreshold = 0.5 // seconds between segments that counts as a pause

// SummarizeSpeech computes speaking metrics from a transcript. Words-per-
// minute is zero when duration is not positive. Pauses are inter-segment
// gaps larger than pauseThreshold.
func SummarizeSpeech(t Transcript) SpeechAnalysis {
	words := strings.Fields(t.Text)
	wordCount := len(words)

	wpm := 0.0
	if t.Duration > 0 {
		wpm = float64(wordCount) / t.Duration * 60
	}

	fillers := countFillers(words)

	fillerPct := 0.0
	if wordCount > 0 {
		fillerPct = float64(fillers) / float64(wordCount) * 100
	}

	pauseCount := 0
	pauseTotal := 0.0
	for i := 0; i+1 < len(t.Segments); i++ {
		gap := t.Segments[i+1].Start - t.Segments[i].End
		if gap > pauseThreshold {
			pauseCount++
			pauseTotal += gap
		}
	}
	avgPause := 0.0
	if pauseCount > 0 {
		avgPause = pauseTotal / float64(pauseCount)
	}

	return SpeechAnalysis{
		WordCount:            wordCount,
		WordsPerMinute:       round1(wpm),
		FillerWordCount:      fillers,
		FillerPercentage:     round1(fillerPct),
		PauseCount:           pauseCount,
		AveragePauseDuration: round2(avgPause),
		TotalSpeakingTime:    round1(t.Duration),
	}
}

// countFillers scans normalized words for the filler lexicon, including the
// two-word filler "you know".
func countFillers(words []string) int {
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = strings.Trim(strings.ToLower(w), ".,!?;:'\"()")
	}

	count := 0
	for i, w := range norm {
		if fillerWords[w] {
			count++
			continue
		}
		if w == "you" && i+1 < len(norm) && norm[i+1] == "know" {
			count++
		}
	}
	return count
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
