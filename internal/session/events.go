package session

import (
	"github.com/pollyhq/pollycoach/internal/analysis"
	"github.com/pollyhq/pollycoach/internal/models"
)

// ClientMessage is one decoded inbound message from the connection. The
// transport decodes JSON; fields beyond Type are populated per message kind.
type ClientMessage struct {
	Type      string  `json:"type"`
	Data      string  `json:"data,omitempty"`      // base64 payload for frame/audio
	Timestamp float64 `json:"timestamp,omitempty"` // client clock, millis
	Message   string  `json:"message,omitempty"`   // chat text

	// request_new_topic filters
	Difficulty string `json:"difficulty,omitempty"`
	Category   string `json:"category,omitempty"`
}

// Inbound message kinds.
const (
	MsgFrame           = "frame"
	MsgStartRecording  = "start_recording"
	MsgStopRecording   = "stop_recording"
	MsgAudioChunk      = "audio_chunk"
	MsgAudioComplete   = "audio_complete"
	MsgChat            = "chat"
	MsgRequestNewTopic = "request_new_topic"
)

type EmotionUpdate struct {
	Type        string                      `json:"type"`
	Data        analysis.FrameEmotionResult `json:"data"`
	FrameNumber int                         `json:"frame_number"`
}

type RecordingStarted struct {
	Type  string       `json:"type"`
	Topic models.Topic `json:"topic"`
}

type RecordingStopped struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

type TranscriptionComplete struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
}

type AnalysisComplete struct {
	Type string `json:"type"`
	analysis.Report
}

type ChatResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type TopicAssigned struct {
	Type  string       `json:"type"`
	Topic models.Topic `json:"topic"`
}

type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newEmotionUpdate(r analysis.FrameEmotionResult, frame int) EmotionUpdate {
	return EmotionUpdate{Type: "emotion_update", Data: r, FrameNumber: frame}
}

func newRecordingStarted(t models.Topic) RecordingStarted {
	return RecordingStarted{Type: "recording_started", Topic: t}
}

func newRecordingStopped(duration float64) RecordingStopped {
	return RecordingStopped{Type: "recording_stopped", Duration: duration}
}

// NewTranscriptionComplete is emitted by the report pipeline as soon as the
// transcript exists, ahead of the full report.
func NewTranscriptionComplete(text string) TranscriptionComplete {
	return TranscriptionComplete{Type: "transcription_complete", Transcript: text}
}

func newAnalysisComplete(r analysis.Report) AnalysisComplete {
	return AnalysisComplete{Type: "analysis_complete", Report: r}
}

func newChatResponse(msg string) ChatResponse {
	return ChatResponse{Type: "chat_response", Message: msg}
}

func newTopicAssigned(t models.Topic) TopicAssigned {
	return TopicAssigned{Type: "topic_assigned", Topic: t}
}

func newWarning(msg string) Warning {
	return Warning{Type: "warning", Message: msg}
}

func newError(msg string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: msg}
}
