package config

import (
	"os"
	"strconv"
	"time"
)

// Settings are the orchestrator knobs, read once at startup.
type Settings struct {
	Port string

	MaxAudioBytes         int
	FrameClassifyInterval time.Duration
	ClassifyTimeout       time.Duration
	ChatHistoryMax        int
	PipelineTimeout       time.Duration
	SessionOutBuffer      int

	TopicsFile string
	Language   string

	EmotionAPIURL string
	VoiceAPIURL   string

	VertexProject  string
	VertexLocation string
	VertexModel    string

	GCSBucket string

	JWTSecret string

	TimelineTTL time.Duration
}

func Load() Settings {
	return Settings{
		Port: envStr("PORT", "8080"),

		MaxAudioBytes:         envInt("MAX_AUDIO_BYTES", 10<<20),
		FrameClassifyInterval: envMillis("FRAME_CLASSIFY_INTERVAL_MS", 250),
		ClassifyTimeout:       envMillis("CLASSIFY_TIMEOUT_MS", 5000),
		ChatHistoryMax:        envInt("CHAT_HISTORY_MAX", 20),
		PipelineTimeout:       envMillis("PIPELINE_TIMEOUT_MS", 180_000),
		SessionOutBuffer:      envInt("SESSION_OUT_BUFFER", 256),

		TopicsFile: os.Getenv("TOPICS_FILE"),
		Language:   envStr("SPEECH_LANGUAGE", "en-US"),

		EmotionAPIURL: os.Getenv("EMOTION_API_URL"),
		VoiceAPIURL:   os.Getenv("VOICE_API_URL"),

		VertexProject:  os.Getenv("VERTEX_PROJECT_ID"),
		VertexLocation: envStr("VERTEX_LOCATION", "us-central1"),
		VertexModel:    os.Getenv("VERTEX_MODEL"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		TimelineTTL: envMillis("TIMELINE_TTL_MS", int(7*24*time.Hour/time.Millisecond)),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}
