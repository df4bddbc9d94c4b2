package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakePlayer is a scriptable Player; tests drive the sampling loop directly
// via sample() instead of waiting on the ticker.
type fakePlayer struct {
	mu    sync.Mutex
	cur   float64
	dur   float64
	seeks []float64
}

func (p *fakePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

func (p *fakePlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dur
}

func (p *fakePlayer) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cur = seconds
	p.seeks = append(p.seeks, seconds)
}

func (p *fakePlayer) set(cur float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cur = cur
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name           string
		state          State
		event          Event
		wantState      State
		wantCompletion bool
	}{
		{name: "idle play", state: StateIdle, event: EventPlay, wantState: StatePlaying},
		{name: "idle pause ignored", state: StateIdle, event: EventPause, wantState: StateIdle},
		{name: "playing pause", state: StatePlaying, event: EventPause, wantState: StatePaused},
		{name: "paused play", state: StatePaused, event: EventPlay, wantState: StatePlaying},
		{name: "playing ended", state: StatePlaying, event: EventEnded, wantState: StateEnded, wantCompletion: true},
		{name: "paused ended", state: StatePaused, event: EventEnded, wantState: StateEnded, wantCompletion: true},
		{name: "ended is terminal", state: StateEnded, event: EventPlay, wantState: StateEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, eff := transition(tt.state, tt.event)
			assert.Equal(t, tt.wantState, next)
			assert.Equal(t, tt.wantCompletion, eff.signalCompletion)
		})
	}
}

func TestMonitor_forwardSkipRejected(t *testing.T) {
	player := &fakePlayer{dur: 60}
	var blockedCalls int
	m := NewMonitor(player, MonitorConfig{}, Handlers{
		OnSkipBlocked: func() { blockedCalls++ },
	})
	m.Dispatch(EventPlay)

	player.set(10)
	m.sample()
	assert.Equal(t, float64(10), m.LastKnownPosition())

	// user drags the scrubber from 10s to 20s
	player.set(20)
	m.sample()

	assert.Equal(t, []float64{10}, player.seeks, "player must be seeked back")
	assert.Equal(t, float64(10), m.LastKnownPosition(), "rejected skip must not advance progress")
	assert.Equal(t, 1, blockedCalls)
	assert.True(t, m.SkipBlocked())
}

func TestMonitor_advanceWithinToleranceAccepted(t *testing.T) {
	player := &fakePlayer{dur: 60}
	m := NewMonitor(player, MonitorConfig{}, Handlers{})
	m.Dispatch(EventPlay)

	player.set(10)
	m.sample()
	player.set(12.5) // 2.5s elapsed between samples, within the 3s tolerance
	m.sample()

	assert.Empty(t, player.seeks)
	assert.Equal(t, float64(12.5), m.LastKnownPosition())
	assert.False(t, m.SkipBlocked())
}

func TestMonitor_backwardSeekAccepted(t *testing.T) {
	player := &fakePlayer{dur: 60}
	m := NewMonitor(player, MonitorConfig{}, Handlers{})
	m.Dispatch(EventPlay)

	player.set(30)
	m.sample()
	player.set(5) // rewatching an earlier section
	m.sample()

	assert.Empty(t, player.seeks)
	assert.Equal(t, float64(5), m.LastKnownPosition())
}

func TestMonitor_invalidSamplesDiscarded(t *testing.T) {
	player := &fakePlayer{}
	var progressCalls int
	m := NewMonitor(player, MonitorConfig{}, Handlers{
		OnProgress: func(_, _ float64) { progressCalls++ },
	})
	m.Dispatch(EventPlay)

	// duration not known yet (metadata still loading)
	player.dur = 0
	player.set(10)
	m.sample()
	assert.Zero(t, progressCalls)
	assert.Zero(t, m.LastKnownPosition())

	player.dur = 60
	m.sample()
	assert.Equal(t, 1, progressCalls)
}

func TestMonitor_completionSignaledOnce(t *testing.T) {
	player := &fakePlayer{dur: 60}
	var completions []float64
	m := NewMonitor(player, MonitorConfig{}, Handlers{
		OnComplete: func(watched, _ float64) { completions = append(completions, watched) },
	})
	m.Dispatch(EventPlay)

	player.set(47)
	m.sample()
	assert.Empty(t, completions, "below 80% watched")

	player.set(48)
	m.sample()
	assert.Equal(t, []float64{48}, completions)

	player.set(50)
	m.sample()
	assert.Len(t, completions, 1, "completion must only fire once per session")
}

func TestMonitor_endedSignalsCompletion(t *testing.T) {
	player := &fakePlayer{dur: 60}
	var completions int
	var watched, total float64
	m := NewMonitor(player, MonitorConfig{}, Handlers{
		OnComplete: func(w, tot float64) {
			completions++
			watched, total = w, tot
		},
	})
	m.Dispatch(EventPlay)

	player.set(30) // natural end reached regardless of percentage watched
	m.sample()
	m.Dispatch(EventEnded)

	assert.Equal(t, 1, completions)
	assert.Equal(t, float64(60), watched)
	assert.Equal(t, float64(60), total)
	assert.Equal(t, StateEnded, m.State())

	m.Dispatch(EventEnded)
	assert.Equal(t, 1, completions)
}

func TestMonitor_skipNoticeAutoClears(t *testing.T) {
	player := &fakePlayer{dur: 60}
	m := NewMonitor(player, MonitorConfig{}, Handlers{})
	m.Dispatch(EventPlay)

	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	player.set(10)
	m.sample()
	player.set(20)
	m.sample()
	assert.True(t, m.SkipBlocked())

	now = now.Add(2 * time.Second)
	assert.True(t, m.SkipBlocked())

	now = now.Add(1001 * time.Millisecond)
	assert.False(t, m.SkipBlocked(), "notice must clear after 3s")
}

func TestMonitor_resumedSessionIsNotASkip(t *testing.T) {
	player := &fakePlayer{dur: 60}
	var blockedCalls int
	m := NewMonitor(player, MonitorConfig{}, Handlers{
		OnSkipBlocked: func() { blockedCalls++ },
	})

	// reopening a lesson: seek to the stored position and seed the baseline
	player.Seek(50)
	player.seeks = nil
	m.Resume(50)
	m.Dispatch(EventPlay)
	m.sample()

	assert.Empty(t, player.seeks, "resume must not be rejected as a skip")
	assert.Equal(t, float64(50), m.LastKnownPosition())
	assert.Zero(t, blockedCalls)
	assert.False(t, m.SkipBlocked())

	// but skipping forward from the resumed position is still rejected
	player.set(58)
	m.sample()
	assert.Equal(t, []float64{50}, player.seeks)
	assert.Equal(t, 1, blockedCalls)
}

func TestMonitor_noSkipDetectionWhilePaused(t *testing.T) {
	player := &fakePlayer{dur: 60}
	m := NewMonitor(player, MonitorConfig{}, Handlers{})
	m.Dispatch(EventPlay)

	player.set(10)
	m.sample()

	m.Dispatch(EventPause)
	player.set(20)
	m.sample()

	assert.Empty(t, player.seeks)
	assert.Equal(t, float64(20), m.LastKnownPosition())
}

func TestMonitor_startStop(t *testing.T) {
	player := &fakePlayer{dur: 60}
	m := NewMonitor(player, MonitorConfig{SampleInterval: time.Millisecond}, Handlers{})
	m.Start()
	m.Dispatch(EventPlay)

	player.set(1)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, float64(1), m.LastKnownPosition())

	m.Stop()
	m.Stop() // idempotent
}
