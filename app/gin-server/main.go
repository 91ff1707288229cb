package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/pollyhq/pollycoach/config"
	"github.com/pollyhq/pollycoach/internal/api/handlers"
	"github.com/pollyhq/pollycoach/internal/api/middleware"
	"github.com/pollyhq/pollycoach/internal/api/routes"
	"github.com/pollyhq/pollycoach/internal/cache"
	"github.com/pollyhq/pollycoach/internal/logger"
	"github.com/pollyhq/pollycoach/internal/providers/emotion"
	"github.com/pollyhq/pollycoach/internal/providers/llm"
	"github.com/pollyhq/pollycoach/internal/providers/stt"
	"github.com/pollyhq/pollycoach/internal/providers/voice"
	mongorepo "github.com/pollyhq/pollycoach/internal/repositories/mongo"
	pgrepo "github.com/pollyhq/pollycoach/internal/repositories/postgres"
	"github.com/pollyhq/pollycoach/internal/services"
	"github.com/pollyhq/pollycoach/internal/session"
	"github.com/pollyhq/pollycoach/internal/storage"
	"github.com/pollyhq/pollycoach/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.Load()
	ctx := context.Background()

	// Infra backends are optional: without them the server still coaches,
	// it just skips the corresponding persistence stage.
	var records pgrepo.PracticeRepo
	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Warn("postgres unavailable, reports will not be persisted")
	} else {
		records = pgrepo.NewPracticeRepo(config.PostgresDB)
		log.Info("postgres connected")
	}

	var statsCache cache.Cache
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Warn("redis unavailable, stats are uncached")
	} else {
		statsCache = cache.NewRedisCache(config.RedisClient)
		log.Info("redis connected")
	}

	var timelines mongorepo.TimelineRepository
	if err := config.InitMongo(); err != nil {
		log.WithError(err).Warn("mongo unavailable, emotion timelines will not be archived")
	} else {
		timelines = mongorepo.NewTimelineRepo(config.MongoDatabase())
		log.Info("mongo connected")
	}

	// Adapters; each one degrades to its pipeline fallback when absent.
	var transcriber stt.Provider
	if sp, err := stt.NewGoogleSpeech(ctx); err != nil {
		log.WithError(err).Warn("speech client unavailable, transcription disabled")
	} else {
		transcriber = sp
		defer sp.Close()
	}

	var generator llm.Provider
	if cfg.VertexProject == "" {
		log.Warn("VERTEX_PROJECT_ID not set, feedback and chat use fallbacks")
	} else if vg, err := llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel); err != nil {
		log.WithError(err).Warn("vertex client unavailable, feedback and chat use fallbacks")
	} else {
		generator = vg
		defer vg.Close()
	}

	var classifier emotion.Classifier
	if cfg.EmotionAPIURL == "" {
		log.Warn("EMOTION_API_URL not set, frame classification disabled")
	} else {
		classifier = emotion.NewHTTPClassifier(cfg.EmotionAPIURL, cfg.ClassifyTimeout)
	}

	var voiceAnalyzer voice.Analyzer
	if cfg.VoiceAPIURL == "" {
		log.Warn("VOICE_API_URL not set, voice analysis uses neutral defaults")
	} else {
		voiceAnalyzer = voice.NewHTTPAnalyzer(cfg.VoiceAPIURL, 0)
	}

	var uploader storage.Uploader
	if cfg.GCSBucket != "" {
		if up, err := storage.NewGCSUploader(ctx, cfg.GCSBucket); err != nil {
			log.WithError(err).Warn("gcs unavailable, recordings will not be archived")
		} else {
			uploader = up
			defer up.Close()
		}
	}

	topics := services.NewTopicService(cfg.TopicsFile, log)
	history := services.NewHistoryService(records, timelines, statsCache)

	pipeline := &workers.ReportPipeline{
		STT:         transcriber,
		Voice:       voiceAnalyzer,
		LLM:         generator,
		Language:    cfg.Language,
		TimelineTTL: cfg.TimelineTTL,
		Logger:      log,
	}
	if records != nil {
		pipeline.Records = records
	}
	if timelines != nil {
		pipeline.Timelines = timelines
	}
	if uploader != nil {
		pipeline.Audio = uploader
	}

	limits := session.DefaultLimits()
	limits.MaxAudioBytes = cfg.MaxAudioBytes
	limits.FrameClassifyInterval = cfg.FrameClassifyInterval
	limits.ClassifyTimeout = cfg.ClassifyTimeout
	limits.ChatHistoryMax = cfg.ChatHistoryMax
	limits.PipelineTimeout = cfg.PipelineTimeout
	limits.OutBuffer = cfg.SessionOutBuffer

	registry := session.NewRegistry(session.Deps{
		Classifier: classifier,
		Chat:       generator,
		Reports:    pipeline,
		Topics:     topics,
		Limits:     limits,
		Logger:     log,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		History:   handlers.NewHistoryHandler(history),
		Topics:    handlers.NewTopicHandler(topics),
		WS:        handlers.NewWSHandler(registry, log),
		JWTSecret: cfg.JWTSecret,
	})

	log.WithField("port", cfg.Port).Info("pollycoach listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
