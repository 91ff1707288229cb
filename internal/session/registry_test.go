package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	r := NewRegistry(testDeps())

	s, err := r.Create("dup")
	require.NoError(t, err)
	require.NotNil(t, s)

	_, err = r.Create("dup")
	assert.ErrorIs(t, err, ErrDuplicateSession)
	assert.Equal(t, 1, r.Len())

	r.Remove("dup")
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(testDeps())

	s, err := r.Create("s1")
	require.NoError(t, err)

	r.Remove("s1")
	r.Remove("s1")
	r.Remove("never-existed")

	assert.Equal(t, 0, r.Len())
	select {
	case <-s.Done():
	default:
		t.Fatal("removed session must be closed")
	}

	// the id is free again
	_, err = r.Create("s1")
	require.NoError(t, err)
	r.Remove("s1")
}

func TestRegistryConcurrentSessionsAreIsolated(t *testing.T) {
	r := NewRegistry(testDeps())

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			s, err := r.Create(id)
			if err != nil {
				t.Errorf("create %s: %v", id, err)
				return
			}
			s.Enqueue(ClientMessage{Type: MsgRequestNewTopic})
			select {
			case ev := <-s.Out():
				assert.IsType(t, TopicAssigned{}, ev)
			case <-time.After(2 * time.Second):
				t.Errorf("session %s never produced its topic", id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, r.Len())
	for i := 0; i < n; i++ {
		r.Remove(fmt.Sprintf("s%d", i))
	}
	assert.Equal(t, 0, r.Len())
}

// awaitEvent pulls events from the session until one of the wanted type
// arrives or the deadline passes.
func awaitEvent[T any](t *testing.T, s *Session) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Out():
			if typed, ok := ev.(T); ok {
				return typed
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestFullSessionFlow(t *testing.T) {
	deps := testDeps()
	deps.Reports = &fakeRunner{report: analysis.Report{
		Transcript:   "hello world",
		Feedback:     "keep practicing",
		OverallScore: 77.5,
	}}
	r := NewRegistry(deps)

	s, err := r.Create("flow")
	require.NoError(t, err)
	defer r.Remove("flow")

	s.Enqueue(ClientMessage{Type: MsgRequestNewTopic})
	assigned := awaitEvent[TopicAssigned](t, s)
	assert.Equal(t, 1, assigned.Topic.ID)

	s.Enqueue(ClientMessage{Type: MsgStartRecording})
	awaitEvent[RecordingStarted](t, s)

	s.Enqueue(ClientMessage{Type: MsgAudioChunk, Data: b64("webm-bytes")})
	s.Enqueue(ClientMessage{Type: MsgStopRecording})
	stopped := awaitEvent[RecordingStopped](t, s)
	assert.GreaterOrEqual(t, stopped.Duration, 0.0)

	complete := awaitEvent[AnalysisComplete](t, s)
	assert.Equal(t, "hello world", complete.Transcript)
	assert.Equal(t, "keep practicing", complete.Feedback)
	assert.Equal(t, 77.5, complete.OverallScore)
}

func TestDisconnectDuringProcessing(t *testing.T) {
	deps := testDeps()
	runner := &fakeRunner{
		snaps: make(chan Snapshot, 1),
		block: make(chan struct{}),
	}
	deps.Reports = runner
	r := NewRegistry(deps)

	s, err := r.Create("gone")
	require.NoError(t, err)

	s.Enqueue(ClientMessage{Type: MsgStartRecording})
	s.Enqueue(ClientMessage{Type: MsgStopRecording})

	select {
	case <-runner.snaps:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline never started")
	}

	// client disconnects while the pipeline is still busy
	r.Remove("gone")
	assert.Equal(t, 0, r.Len())

	// letting the pipeline finish must not panic or block
	close(runner.block)
	time.Sleep(50 * time.Millisecond)

	assert.NotPanics(t, func() { s.Enqueue(ClientMessage{Type: MsgChat, Message: "hi"}) })
}
