package analysis

import "math"

// SpeechScore grades pacing and filler usage on a 0-100 scale. The sweet
// spot is 120-160 words per minute; filler words cost up to 20 points.
func SpeechScore(s SpeechAnalysis) float64 {
	var base float64
	switch {
	case s.WordsPerMinute >= 120 && s.WordsPerMinute <= 160:
		base = 100
	case s.WordsPerMinute >= 100 && s.WordsPerMinute <= 180:
		base = 80
	default:
		base = 60
	}

	penalty := math.Min(20, s.FillerPercentage*2)
	return math.Max(0, base-penalty)
}

// EmotionScore grades the dominant on-camera emotion. An empty summary
// scores the 70-point baseline.
func EmotionScore(e EmotionSummary) float64 {
	switch e.Dominant {
	case "happy", "neutral":
		return 85
	case "surprise":
		return 75
	case "sad", "angry", "fear":
		return 50
	default:
		return 70
	}
}

// OverallScore averages the speech, voice, and emotion sub-scores, rounded
// to one decimal place.
func OverallScore(speech SpeechAnalysis, voice VoiceAnalysis, emotions EmotionSummary) float64 {
	voiceScore := voice.ConfidenceScore
	return round1((SpeechScore(speech) + voiceScore + EmotionScore(emotions)) / 3)
}
