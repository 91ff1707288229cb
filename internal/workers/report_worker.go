package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/pollyhq/pollycoach/internal/analysis"
	"github.com/pollyhq/pollycoach/internal/models"
	"github.com/pollyhq/pollycoach/internal/providers/llm"
	"github.com/pollyhq/pollycoach/internal/providers/stt"
	"github.com/pollyhq/pollycoach/internal/providers/voice"
	"github.com/pollyhq/pollycoach/internal/session"
)

// feedbackFallback replaces the generated feedback when the language model
// is unreachable; the report must always carry something actionable.
const feedbackFallback = "I couldn't put together detailed feedback this time. " +
	"Run through the topic once more and I'll take another look."

// RecordStore persists the durable practice record.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.PracticeRecord) error
}

// TimelineStore archives the raw emotion timeline.
type TimelineStore interface {
	Insert(ctx context.Context, arc *models.TimelineArchive) error
}

// AudioStore archives the raw recording and returns its public URL.
type AudioStore interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// ReportPipeline turns a finished recording into a scored report. Every
// external stage fails independently into a documented default; Run always
// returns a complete report.
type ReportPipeline struct {
	STT       stt.Provider
	Voice     voice.Analyzer
	LLM       llm.Provider
	Records   RecordStore
	Timelines TimelineStore
	Audio     AudioStore

	Language    string
	TimelineTTL time.Duration
	Logger      *logrus.Logger
}

func (p *ReportPipeline) Run(ctx context.Context, snap session.Snapshot, emit func(ev any)) analysis.Report {
	log := p.logger().WithField("session_id", snap.SessionID)
	duration := snap.Duration()

	transcript := p.transcribe(ctx, snap, emit, log)
	if transcript.Text != "" && transcript.Duration <= 0 {
		// recognizer gave text but no timings; fall back to wall clock
		transcript.Duration = duration
	}
	speech := analysis.SummarizeSpeech(transcript)

	voiceRes := p.analyzeVoice(ctx, snap, log)
	tone := analysis.DescribeTone(voiceRes)

	emotions := analysis.SummarizeEmotions(snap.Timeline)

	feedback := p.generateFeedback(ctx, snap, transcript, speech, tone, emotions, log)
	score := analysis.OverallScore(speech, voiceRes, emotions)

	audioURL := p.archiveAudio(ctx, snap, log)

	report := analysis.Report{
		Transcript:   transcript.Text,
		Speech:       speech,
		Voice:        voiceRes,
		Tone:         tone,
		Emotions:     emotions,
		Feedback:     feedback,
		OverallScore: score,
		Duration:     duration,
		AudioURL:     audioURL,
	}

	p.persist(ctx, snap, report, log)
	return report
}

func (p *ReportPipeline) transcribe(ctx context.Context, snap session.Snapshot, emit func(ev any), log *logrus.Entry) analysis.Transcript {
	if p.STT == nil || len(snap.Audio) == 0 {
		return analysis.Transcript{}
	}

	tr, err := p.STT.Transcribe(ctx, snap.Audio, p.Language)
	if err != nil {
		log.WithError(err).Warn("transcription failed, continuing with empty transcript")
		return analysis.Transcript{}
	}
	emit(session.NewTranscriptionComplete(tr.Text))
	return tr
}

func (p *ReportPipeline) analyzeVoice(ctx context.Context, snap session.Snapshot, log *logrus.Entry) analysis.VoiceAnalysis {
	if p.Voice == nil || len(snap.Audio) == 0 {
		return analysis.NeutralVoice()
	}

	v, err := p.Voice.Analyze(ctx, snap.Audio)
	if err != nil {
		log.WithError(err).Warn("voice analysis failed, using neutral default")
		return analysis.NeutralVoice()
	}
	return v
}

func (p *ReportPipeline) generateFeedback(ctx context.Context, snap session.Snapshot, transcript analysis.Transcript, speech analysis.SpeechAnalysis, tone string, emotions analysis.EmotionSummary, log *logrus.Entry) string {
	if p.LLM == nil {
		return feedbackFallback
	}

	out, err := p.LLM.Respond(ctx, nil, feedbackPrompt(snap, transcript, speech, tone, emotions))
	if err != nil {
		log.WithError(err).Warn("feedback generation failed, using fallback")
		return feedbackFallback
	}
	return out
}

func feedbackPrompt(snap session.Snapshot, transcript analysis.Transcript, speech analysis.SpeechAnalysis, tone string, emotions analysis.EmotionSummary) string {
	var b bytes.Buffer

	b.WriteString("You are Polly, an expert debate coach. Evaluate this practice response ")
	b.WriteString("and give specific, encouraging feedback with three concrete improvements.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n\n", snap.Topic.Topic)
	if transcript.Text != "" {
		fmt.Fprintf(&b, "Transcript:\n%s\n\n", transcript.Text)
	} else {
		b.WriteString("Transcript: (unavailable)\n\n")
	}
	fmt.Fprintf(&b, "Delivery: %d words at %.0f wpm, %d filler words (%.1f%%), %d pauses\n",
		speech.WordCount, speech.WordsPerMinute, speech.FillerWordCount,
		speech.FillerPercentage, speech.PauseCount)
	fmt.Fprintf(&b, "Voice tone: %s\n", tone)
	if !emotions.Empty() {
		fmt.Fprintf(&b, "Dominant on-camera emotion: %s (%.0f%% face detection rate)\n",
			emotions.Dominant, emotions.DetectionRate*100)
	}

	return b.String()
}

func (p *ReportPipeline) archiveAudio(ctx context.Context, snap session.Snapshot, log *logrus.Entry) string {
	if p.Audio == nil || len(snap.Audio) == 0 {
		return ""
	}

	name := fmt.Sprintf("recordings/%s/%d.webm", snap.SessionID, snap.StoppedAt.UnixMilli())
	url, err := p.Audio.Upload(ctx, name, "audio/webm", bytes.NewReader(snap.Audio))
	if err != nil {
		log.WithError(err).Warn("audio archival failed")
		return ""
	}
	return url
}

// persist writes the durable record and the timeline archive. Failures are
// logged, never surfaced: the client still gets its report.
func (p *ReportPipeline) persist(ctx context.Context, snap session.Snapshot, report analysis.Report, log *logrus.Entry) {
	if p.Records != nil {
		voiceJSON, _ := json.Marshal(report.Voice)
		emotionJSON, _ := json.Marshal(report.Emotions)

		rec := &models.PracticeRecord{
			SessionID:       snap.SessionID,
			TopicID:         snap.Topic.ID,
			TopicText:       snap.Topic.Topic,
			Duration:        report.Duration,
			CreatedAt:       time.Now().UTC(),
			Transcript:      report.Transcript,
			WordCount:       report.Speech.WordCount,
			WordsPerMinute:  report.Speech.WordsPerMinute,
			VoiceAnalysis:   datatypes.JSON(voiceJSON),
			ConfidenceScore: report.Voice.ConfidenceScore,
			EmotionSummary:  datatypes.JSON(emotionJSON),
			DominantEmotion: report.Emotions.Dominant,
			AIFeedback:      report.Feedback,
			OverallScore:    report.OverallScore,
			AudioURL:        report.AudioURL,
		}
		if err := p.Records.Insert(ctx, rec); err != nil {
			log.WithError(err).Error("failed to persist practice record")
		}
	}

	if p.Timelines != nil && len(snap.Timeline) > 0 {
		ttl := p.TimelineTTL
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		arc := &models.TimelineArchive{
			SessionID:  snap.SessionID,
			RecordedAt: snap.StartedAt,
			Frames:     snap.Timeline,
			ExpiresAt:  time.Now().UTC().Add(ttl),
		}
		if err := p.Timelines.Insert(ctx, arc); err != nil {
			log.WithError(err).Warn("failed to archive emotion timeline")
		}
	}
}

func (p *ReportPipeline) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.New()
}
