package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pollyhq/pollycoach/internal/analysis"
	"github.com/pollyhq/pollycoach/internal/models"
	"github.com/pollyhq/pollycoach/internal/providers/emotion"
	"github.com/pollyhq/pollycoach/internal/providers/llm"
)

// State of the recording state machine.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
)

// Limits bound per-session resource usage.
type Limits struct {
	MaxAudioBytes         int
	FrameClassifyInterval time.Duration
	ClassifyTimeout       time.Duration
	ChatHistoryMax        int
	ChatTimeout           time.Duration
	PipelineTimeout       time.Duration
	OutBuffer             int
	InBuffer              int
}

// DefaultLimits mirror the production configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes:         10 << 20,
		FrameClassifyInterval: 250 * time.Millisecond,
		ClassifyTimeout:       5 * time.Second,
		ChatHistoryMax:        20,
		ChatTimeout:           30 * time.Second,
		PipelineTimeout:       3 * time.Minute,
		OutBuffer:             256,
		InBuffer:              256,
	}
}

// Snapshot is the immutable copy of recording data handed to the report
// pipeline; the session keeps mutating its own buffers after handing it off.
type Snapshot struct {
	SessionID string
	Topic     models.Topic
	Audio     []byte
	Timeline  []analysis.FrameEmotionResult
	StartedAt time.Time
	StoppedAt time.Time
	Truncated bool
}

func (s Snapshot) Duration() float64 {
	d := s.StoppedAt.Sub(s.StartedAt).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// ReportRunner executes the post-recording pipeline. Run must never panic
// or return a partially-nil report; every stage has a fallback. emit may be
// used for intermediate events (transcription_complete) and is safe to call
// after the session is gone.
type ReportRunner interface {
	Run(ctx context.Context, snap Snapshot, emit func(ev any)) analysis.Report
}

// TopicSource hands out practice prompts.
type TopicSource interface {
	Random(difficulty, category string) models.Topic
}

// Deps are the collaborators shared by all sessions of one registry.
type Deps struct {
	Classifier emotion.Classifier
	Chat       llm.Provider
	Reports    ReportRunner
	Topics     TopicSource
	Limits     Limits
	Logger     *logrus.Logger
}

// Session is the unit of state for one connected client. All fields below
// the sync primitives are owned by the session's run loop; nothing else may
// touch them.
type Session struct {
	ID        string
	StartedAt time.Time

	deps Deps
	log  *logrus.Entry

	in        chan any
	out       chan any
	closed    chan struct{}
	closeOnce sync.Once

	// run-loop-owned state
	state              State
	topic              models.Topic
	frameCount         int
	timeline           []analysis.FrameEmotionResult
	recordingStartedAt time.Time
	audioBuffer        []byte
	chatHistory        []llm.Message
	lastClassifiedAt   time.Time
}

func newSession(id string, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Limits.OutBuffer <= 0 {
		deps.Limits.OutBuffer = DefaultLimits().OutBuffer
	}
	if deps.Limits.InBuffer <= 0 {
		deps.Limits.InBuffer = DefaultLimits().InBuffer
	}
	return &Session{
		ID:        id,
		StartedAt: time.Now().UTC(),
		deps:      deps,
		log:       deps.Logger.WithField("session_id", id),
		in:        make(chan any, deps.Limits.InBuffer),
		out:       make(chan any, deps.Limits.OutBuffer),
		closed:    make(chan struct{}),
		state:     StateIdle,
	}
}

// Enqueue hands an inbound message to the session's run loop in arrival
// order. Blocks when the mailbox is full so the transport applies natural
// backpressure; returns immediately once the session is closed.
func (s *Session) Enqueue(msg ClientMessage) {
	select {
	case <-s.closed:
	case s.in <- msg:
	}
}

// Out is the ordered stream of outbound events for this session's
// connection. Consumed by a single writer.
func (s *Session) Out() <-chan any { return s.out }

// Close stops the run loop and marks the session dead. Idempotent. Any
// in-flight report pipeline keeps running on its snapshot; its results are
// persisted but no longer delivered.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Done reports session shutdown to the outbound writer.
func (s *Session) Done() <-chan struct{} { return s.closed }

// emit queues an outbound event. Never blocks the run loop: a full buffer
// drops the event with a log line, a closed session swallows it.
func (s *Session) emit(ev any) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.out <- ev:
	default:
		s.log.WithField("event", ev).Warn("outbound buffer full, dropping event")
	}
}

// SendError queues an error event on behalf of the transport layer, for
// conditions that never reach the run loop (malformed JSON and the like).
func (s *Session) SendError(msg string) { s.emit(newError(msg)) }

// deliver posts an internal completion event back into the mailbox, giving
// up silently if the session closed in the meantime.
func (s *Session) deliver(cmd any) {
	select {
	case <-s.closed:
	case s.in <- cmd:
	}
}
