package models

import (
	"time"

	"gorm.io/datatypes"
)

// PracticeRecord is the durable row written once per completed recording.
type PracticeRecord struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	SessionID string    `gorm:"column:session_id;type:text;index" json:"session_id"`
	TopicID   int       `gorm:"column:topic_id" json:"topic_id"`
	TopicText string    `gorm:"column:topic_text;type:text" json:"topic_text"`
	Duration  float64   `gorm:"column:duration" json:"duration"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`

	Transcript     string  `gorm:"column:transcript;type:text" json:"transcript"`
	WordCount      int     `gorm:"column:word_count" json:"word_count"`
	WordsPerMinute float64 `gorm:"column:words_per_minute" json:"words_per_minute"`

	VoiceAnalysis   datatypes.JSON `gorm:"column:voice_analysis;type:jsonb" json:"voice_analysis"`
	ConfidenceScore float64        `gorm:"column:confidence_score" json:"confidence_score"`

	EmotionSummary  datatypes.JSON `gorm:"column:emotion_summary;type:jsonb" json:"emotion_summary"`
	DominantEmotion string         `gorm:"column:dominant_emotion;type:text" json:"dominant_emotion"`

	AIFeedback   string  `gorm:"column:ai_feedback;type:text" json:"ai_feedback"`
	OverallScore float64 `gorm:"column:overall_score" json:"overall_score"`

	AudioURL string `gorm:"column:audio_url;type:text" json:"audio_url,omitempty"`
}

func (PracticeRecord) TableName() string { return "practice_sessions" }

// UserStats aggregates a user's history across all completed recordings.
type UserStats struct {
	TotalSessions     int64   `json:"total_sessions"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageScore      float64 `json:"average_score"`
	TotalWordsSpoken  int64   `json:"total_words_spoken"`
}
