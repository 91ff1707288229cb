package session

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/pollyhq/pollycoach/internal/analysis"
	"github.com/pollyhq/pollycoach/internal/providers/llm"
)

// coachContext frames every LLM call; the original product persona.
const coachContext = "You are Polly, an expert debate coach. You help people improve their " +
	"debate and public speaking skills through constructive feedback and encouragement."

// chatFallback is the reply when the language model is unreachable.
const chatFallback = "I'm having trouble thinking right now. Give me a moment and ask again."

// reportDone carries the finished pipeline result back into the mailbox so
// the state transition happens on the session's own goroutine.
type reportDone struct {
	report analysis.Report
}

// run is the session's single logical task: inbound events are handled one
// at a time, in arrival order. Started by the registry, stopped by Close.
func (s *Session) run() {
	for {
		select {
		case <-s.closed:
			return
		case cmd := <-s.in:
			s.dispatch(cmd)
		}
	}
}

func (s *Session) dispatch(cmd any) {
	switch c := cmd.(type) {
	case ClientMessage:
		s.handleMessage(c)
	case reportDone:
		s.handleReportDone(c)
	default:
		s.log.WithField("command", cmd).Warn("unknown internal command")
	}
}

func (s *Session) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MsgFrame:
		s.handleFrame(msg)
	case MsgStartRecording:
		s.handleStartRecording()
	case MsgStopRecording:
		s.handleStopRecording()
	case MsgAudioChunk, MsgAudioComplete:
		s.handleAudioChunk(msg)
	case MsgChat:
		s.handleChat(msg)
	case MsgRequestNewTopic:
		s.handleNewTopic(msg)
	default:
		s.log.WithField("message_type", msg.Type).Warn("unknown message type")
	}
}

// handleFrame counts every frame message, then classifies at a bounded rate.
// Frames arriving faster than FrameClassifyInterval advance the counter but
// skip classification so a slow classifier never builds a backlog.
func (s *Session) handleFrame(msg ClientMessage) {
	s.frameCount++

	if s.deps.Limits.FrameClassifyInterval > 0 &&
		time.Since(s.lastClassifiedAt) < s.deps.Limits.FrameClassifyInterval {
		return
	}
	s.lastClassifiedAt = time.Now()

	result := s.classifyFrame(msg.Data)
	if result.FaceDetected {
		s.timeline = append(s.timeline, result)
	}
	s.emit(newEmotionUpdate(result, s.frameCount))
}

// classifyFrame decodes and classifies one frame. Any failure, including a
// missing classifier, degrades to a no-face result; the session keeps going.
func (s *Session) classifyFrame(data string) analysis.FrameEmotionResult {
	noFace := analysis.FrameEmotionResult{Timestamp: time.Now().UTC()}

	image, err := decodeBase64Payload(data)
	if err != nil {
		s.log.WithError(err).Debug("frame decode failed")
		return noFace
	}
	if s.deps.Classifier == nil {
		return noFace
	}

	timeout := s.deps.Limits.ClassifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := s.deps.Classifier.Classify(ctx, image)
	if err != nil {
		s.log.WithError(err).Warn("frame classification failed")
		return noFace
	}
	return result
}

func (s *Session) handleStartRecording() {
	if s.state == StateRecording || s.state == StateProcessing {
		s.emit(newError("cannot start recording while " + string(s.state)))
		return
	}

	s.state = StateRecording
	s.recordingStartedAt = time.Now().UTC()
	s.audioBuffer = nil
	s.timeline = nil
	s.lastClassifiedAt = time.Time{}

	s.log.WithField("topic_id", s.topic.ID).Info("recording started")
	s.emit(newRecordingStarted(s.topic))
}

func (s *Session) handleStopRecording() {
	if s.state != StateRecording {
		s.emit(newError("not recording"))
		return
	}
	s.beginProcessing(false)
}

// handleAudioChunk appends audio only inside a recording window; anything
// outside it is discarded without comment. Overflowing the buffer keeps the
// fitting prefix and ends the recording early.
func (s *Session) handleAudioChunk(msg ClientMessage) {
	if s.state != StateRecording {
		return
	}

	chunk, err := decodeBase64Payload(msg.Data)
	if err != nil {
		s.log.WithError(err).Debug("audio decode failed")
		return
	}

	max := s.deps.Limits.MaxAudioBytes
	if max > 0 && len(s.audioBuffer)+len(chunk) > max {
		room := max - len(s.audioBuffer)
		if room > 0 {
			s.audioBuffer = append(s.audioBuffer, chunk[:room]...)
		}
		s.emit(newWarning("audio limit reached, finishing recording early"))
		s.beginProcessing(true)
		return
	}
	s.audioBuffer = append(s.audioBuffer, chunk...)
}

// beginProcessing transitions Recording -> Processing and launches the
// report pipeline on a snapshot. Completion comes back through the mailbox;
// only the pipeline itself moves the session on to Complete.
func (s *Session) beginProcessing(truncated bool) {
	stoppedAt := time.Now().UTC()
	snap := Snapshot{
		SessionID: s.ID,
		Topic:     s.topic,
		Audio:     append([]byte(nil), s.audioBuffer...),
		Timeline:  append([]analysis.FrameEmotionResult(nil), s.timeline...),
		StartedAt: s.recordingStartedAt,
		StoppedAt: stoppedAt,
		Truncated: truncated,
	}

	s.state = StateProcessing
	s.recordingStartedAt = time.Time{}

	s.log.WithFields(map[string]any{
		"duration":  snap.Duration(),
		"audio":     len(snap.Audio),
		"frames":    len(snap.Timeline),
		"truncated": truncated,
	}).Info("recording stopped, processing")
	s.emit(newRecordingStopped(snap.Duration()))

	timeout := s.deps.Limits.PipelineTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		report := s.deps.Reports.Run(ctx, snap, s.emit)
		s.deliver(reportDone{report: report})
	}()
}

func (s *Session) handleReportDone(done reportDone) {
	if s.state == StateProcessing {
		s.state = StateComplete
	}
	s.emit(newAnalysisComplete(done.report))
}

func (s *Session) handleChat(msg ClientMessage) {
	if strings.TrimSpace(msg.Message) == "" {
		return
	}

	history := append([]llm.Message(nil), s.chatHistory...)
	s.appendChat("user", msg.Message)

	reply := s.chatReply(history, msg.Message)
	s.appendChat("assistant", reply)
	s.emit(newChatResponse(reply))
}

func (s *Session) chatReply(history []llm.Message, message string) string {
	if s.deps.Chat == nil {
		return chatFallback
	}

	timeout := s.deps.Limits.ChatTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	prompt := coachContext
	if summary := analysis.SummarizeEmotions(s.timeline); !summary.Empty() {
		prompt += "\n\nThe speaker's current emotional state on camera: " + summary.Dominant
	}
	prompt += "\n\nUser: " + message

	reply, err := s.deps.Chat.Respond(ctx, history, prompt)
	if err != nil {
		s.log.WithError(err).Warn("chat generation failed")
		return chatFallback
	}
	return reply
}

// appendChat grows the history under a sliding window so long sessions
// don't accumulate unbounded LLM context.
func (s *Session) appendChat(role, content string) {
	s.chatHistory = append(s.chatHistory, llm.Message{Role: role, Content: content})
	max := s.deps.Limits.ChatHistoryMax
	if max > 0 && len(s.chatHistory) > max {
		s.chatHistory = s.chatHistory[len(s.chatHistory)-max:]
	}
}

func (s *Session) handleNewTopic(msg ClientMessage) {
	if s.deps.Topics == nil {
		s.emit(newError("no topics available"))
		return
	}
	s.topic = s.deps.Topics.Random(msg.Difficulty, msg.Category)
	s.emit(newTopicAssigned(s.topic))
}

// decodeBase64Payload strips an optional data-URL prefix before decoding.
func decodeBase64Payload(data string) ([]byte, error) {
	if i := strings.Index(data, ","); i >= 0 {
		data = data[i+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}
