package analysis

import "strings"

// VoiceAnalysis holds acoustic features extracted from the recorded audio.
type VoiceAnalysis struct {
	AveragePitch     float64 `json:"average_pitch"`
	PitchVariance    float64 `json:"pitch_variance"`
	AverageEnergy    float64 `json:"average_energy"`
	EnergyVariance   float64 `json:"energy_variance"`
	ArticulationRate float64 `json:"articulation_rate"`
	VoiceBrightness  float64 `json:"voice_brightness"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Duration         float64 `json:"duration"`
}

// NeutralVoice is the fallback when the voice analyzer is unavailable.
func NeutralVoice() VoiceAnalysis {
	return VoiceAnalysis{ConfidenceScore: 50}
}

// DescribeTone turns voice metrics into a short human-readable description,
// e.g. "confident, steady, varied".
func DescribeTone(v VoiceAnalysis) string {
	var parts []string

	switch {
	case v.ConfidenceScore >= 75:
		parts = append(parts, "confident")
	case v.ConfidenceScore >= 50:
		parts = append(parts, "moderately confident")
	default:
		parts = append(parts, "uncertain")
	}

	switch {
	case v.AverageEnergy > 0.02:
		parts = append(parts, "energetic")
	case v.AverageEnergy > 0.01:
		parts = append(parts, "steady")
	default:
		parts = append(parts, "calm")
	}

	switch {
	case v.PitchVariance > 80:
		parts = append(parts, "expressive")
	case v.PitchVariance > 40:
		parts = append(parts, "varied")
	default:
		parts = append(parts, "monotone")
	}

	return strings.Join(parts, ", ")
}
