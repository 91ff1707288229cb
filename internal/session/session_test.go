package session

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollyhq/pollycoach/internal/analysis"
	"github.com/pollyhq/pollycoach/internal/models"
)

type fakeClassifier struct {
	result analysis.FrameEmotionResult
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, image []byte) (analysis.FrameEmotionResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRunner struct {
	report analysis.Report
	snaps  chan Snapshot
	block  chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, snap Snapshot, emit func(ev any)) analysis.Report {
	if f.snaps != nil {
		f.snaps <- snap
	}
	if f.block != nil {
		<-f.block
	}
	return f.report
}

type fakeTopics struct{ topic models.Topic }

func (f fakeTopics) Random(difficulty, category string) models.Topic { return f.topic }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testDeps() Deps {
	limits := DefaultLimits()
	limits.FrameClassifyInterval = 0
	return Deps{
		Reports: &fakeRunner{},
		Topics:  fakeTopics{topic: models.Topic{ID: 1, Topic: "Remote work"}},
		Limits:  limits,
		Logger:  quietLogger(),
	}
}

// drainEvents empties the outbound buffer without blocking.
func drainEvents(s *Session) []any {
	var events []any
	for {
		select {
		case ev := <-s.out:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func b64(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func TestStartRecordingResetsBuffers(t *testing.T) {
	s := newSession("s1", testDeps())
	s.audioBuffer = []byte("stale")
	s.timeline = []analysis.FrameEmotionResult{{FaceDetected: true}}

	s.dispatch(ClientMessage{Type: MsgStartRecording})

	assert.Equal(t, StateRecording, s.state)
	assert.Nil(t, s.audioBuffer)
	assert.Nil(t, s.timeline)
	assert.False(t, s.recordingStartedAt.IsZero())

	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.IsType(t, RecordingStarted{}, events[0])
}

func TestStartRecordingWhileRecordingIsRejected(t *testing.T) {
	s := newSession("s1", testDeps())
	s.dispatch(ClientMessage{Type: MsgStartRecording})
	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("chunk")})
	drainEvents(s)

	s.dispatch(ClientMessage{Type: MsgStartRecording})

	assert.Equal(t, StateRecording, s.state)
	assert.Equal(t, []byte("chunk"), s.audioBuffer, "rejected start must not touch buffers")

	events := drainEvents(s)
	require.Len(t, events, 1)
	errEv, ok := events[0].(ErrorEvent)
	require.True(t, ok)
	assert.Contains(t, errEv.Message, "recording")
}

func TestStopWhileIdleEmitsErrorWithoutPipeline(t *testing.T) {
	deps := testDeps()
	runner := &fakeRunner{snaps: make(chan Snapshot, 1)}
	deps.Reports = runner
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgStopRecording})

	assert.Equal(t, StateIdle, s.state)
	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.IsType(t, ErrorEvent{}, events[0])

	select {
	case <-runner.snaps:
		t.Fatal("pipeline must not run for a stop outside a recording")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAudioIgnoredOutsideRecording(t *testing.T) {
	s := newSession("s1", testDeps())

	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("noise")})

	assert.Empty(t, s.audioBuffer)
	assert.Empty(t, drainEvents(s))
}

func TestStopRecordingSnapshotsAndCompletes(t *testing.T) {
	deps := testDeps()
	runner := &fakeRunner{
		report: analysis.Report{OverallScore: 82, Feedback: "solid"},
		snaps:  make(chan Snapshot, 1),
	}
	deps.Reports = runner
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgStartRecording})
	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("audio-1")})
	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("audio-2")})
	drainEvents(s)

	s.dispatch(ClientMessage{Type: MsgStopRecording})
	assert.Equal(t, StateProcessing, s.state)

	var snap Snapshot
	select {
	case snap = <-runner.snaps:
	case <-time.After(time.Second):
		t.Fatal("pipeline never started")
	}
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, []byte("audio-1audio-2"), snap.Audio)
	assert.False(t, snap.Truncated)
	assert.GreaterOrEqual(t, snap.Duration(), 0.0)

	// the pipeline goroutine posts completion back into the mailbox
	var done any
	select {
	case done = <-s.in:
	case <-time.After(time.Second):
		t.Fatal("completion never delivered")
	}
	s.dispatch(done)

	assert.Equal(t, StateComplete, s.state)
	events := drainEvents(s)
	var complete *AnalysisComplete
	for _, ev := range events {
		if ac, ok := ev.(AnalysisComplete); ok {
			complete = &ac
		}
	}
	require.NotNil(t, complete)
	assert.Equal(t, "analysis_complete", complete.Type)
	assert.Equal(t, 82.0, complete.OverallScore)
}

func TestAudioOverflowTruncatesAndFinishesEarly(t *testing.T) {
	deps := testDeps()
	deps.Limits.MaxAudioBytes = 8
	runner := &fakeRunner{snaps: make(chan Snapshot, 1)}
	deps.Reports = runner
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgStartRecording})
	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("12345")})
	drainEvents(s)

	s.dispatch(ClientMessage{Type: MsgAudioChunk, Data: b64("6789AB")})

	assert.Equal(t, StateProcessing, s.state)
	events := drainEvents(s)
	var warned bool
	for _, ev := range events {
		if _, ok := ev.(Warning); ok {
			warned = true
		}
	}
	assert.True(t, warned, "overflow must emit a warning")

	select {
	case snap := <-runner.snaps:
		assert.True(t, snap.Truncated)
		assert.Equal(t, []byte("12345678"), snap.Audio, "fitting prefix is kept")
	case <-time.After(time.Second):
		t.Fatal("pipeline never started")
	}
}

func TestFrameCountAdvancesPastRateLimit(t *testing.T) {
	deps := testDeps()
	deps.Limits.FrameClassifyInterval = time.Hour
	cls := &fakeClassifier{result: analysis.FrameEmotionResult{
		FaceDetected:    true,
		DominantEmotion: "happy",
		Confidence:      0.9,
	}}
	deps.Classifier = cls
	s := newSession("s1", deps)

	for i := 0; i < 5; i++ {
		s.dispatch(ClientMessage{Type: MsgFrame, Data: b64("frame")})
	}

	assert.Equal(t, 5, s.frameCount)
	assert.Equal(t, 1, cls.calls, "only the first frame inside the window is classified")

	events := drainEvents(s)
	require.Len(t, events, 1)
	update, ok := events[0].(EmotionUpdate)
	require.True(t, ok)
	assert.Equal(t, 1, update.FrameNumber)
	assert.Equal(t, "happy", update.Data.DominantEmotion)
}

func TestFrameClassifierFailureDegradesToNoFace(t *testing.T) {
	deps := testDeps()
	deps.Classifier = &fakeClassifier{err: errors.New("sidecar down")}
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgFrame, Data: b64("frame")})

	assert.Equal(t, 1, s.frameCount)
	assert.Empty(t, s.timeline, "failed frames never enter the timeline")

	events := drainEvents(s)
	require.Len(t, events, 1)
	update, ok := events[0].(EmotionUpdate)
	require.True(t, ok)
	assert.False(t, update.Data.FaceDetected)
}

func TestTimelineKeepsOnlyDetectedFaces(t *testing.T) {
	deps := testDeps()
	cls := &fakeClassifier{result: analysis.FrameEmotionResult{FaceDetected: true, DominantEmotion: "neutral"}}
	deps.Classifier = cls
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgFrame, Data: b64("a")})
	cls.result = analysis.FrameEmotionResult{FaceDetected: false}
	s.dispatch(ClientMessage{Type: MsgFrame, Data: b64("b")})

	assert.Equal(t, 2, s.frameCount)
	require.Len(t, s.timeline, 1)
	assert.Equal(t, "neutral", s.timeline[0].DominantEmotion)
}

func TestBadFrameDataDegradesToNoFace(t *testing.T) {
	deps := testDeps()
	cls := &fakeClassifier{}
	deps.Classifier = cls
	s := newSession("s1", deps)

	s.dispatch(ClientMessage{Type: MsgFrame, Data: "%%%not-base64%%%"})

	assert.Equal(t, 0, cls.calls)
	events := drainEvents(s)
	require.Len(t, events, 1)
	update, ok := events[0].(EmotionUpdate)
	require.True(t, ok)
	assert.False(t, update.Data.FaceDetected)
}

func TestNewTopicAssignsAndAnnounces(t *testing.T) {
	s := newSession("s1", testDeps())

	s.dispatch(ClientMessage{Type: MsgRequestNewTopic, Difficulty: "easy"})

	assert.Equal(t, 1, s.topic.ID)
	events := drainEvents(s)
	require.Len(t, events, 1)
	assigned, ok := events[0].(TopicAssigned)
	require.True(t, ok)
	assert.Equal(t, "Remote work", assigned.Topic.Topic)
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	deps := testDeps()
	deps.Limits.OutBuffer = 1
	s := newSession("s1", deps)

	s.emit(newWarning("one"))
	s.emit(newWarning("two"))

	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.Equal(t, "one", events[0].(Warning).Message)
}

func TestEmitAfterCloseIsSwallowed(t *testing.T) {
	s := newSession("s1", testDeps())
	s.Close()

	assert.NotPanics(t, func() {
		s.emit(newWarning("late"))
		s.SendError("late error")
	})
	assert.Empty(t, drainEvents(s))
}
