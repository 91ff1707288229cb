package analysis

// Report is the composed result of a completed recording: everything the
// client receives in the final analysis event. Read-only once built.
type Report struct {
	Transcript   string         `json:"transcript"`
	Speech       SpeechAnalysis `json:"speech_analysis"`
	Voice        VoiceAnalysis  `json:"voice_analysis"`
	Tone         string         `json:"tone"`
	Emotions     EmotionSummary `json:"emotion_summary"`
	Feedback     string         `json:"feedback"`
	OverallScore float64        `json:"overall_score"`
	Duration     float64        `json:"duration"`
	AudioURL     string         `json:"audio_url,omitempty"`
}
