// Package playback implements the client side of watch-progress tracking:
// a Monitor that samples a video player on a fixed cadence and rejects
// forward skips, and a Reporter that ships accepted samples to the API.
package playback

import (
	"math"
	"sync"
	"time"
)

// Player is a handle to a video player widget. Implementations report the
// current playback position and media duration on demand and obey seek
// commands; discrete state changes are fed to the Monitor via Dispatch.
type Player interface {
	CurrentTime() float64
	Duration() float64
	Seek(seconds float64)
}

// State is the playback session state: Idle -> Playing <-> Paused -> Ended.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Event is a discrete player state-change notification.
type Event int

const (
	EventPlay Event = iota
	EventPause
	EventEnded
)

// effects lists the side effects a transition asks the Monitor to perform.
type effects struct {
	signalCompletion bool
}

// transition is the pure state-transition function. Ended is terminal and
// unconditionally signals completion: a learner who lets the video play to
// its end satisfies completion even if the percentage threshold was missed
// due to rounding.
func transition(s State, e Event) (State, effects) {
	if s == StateEnded {
		return s, effects{}
	}
	switch e {
	case EventPlay:
		return StatePlaying, effects{}
	case EventPause:
		if s == StatePlaying {
			return StatePaused, effects{}
		}
		return s, effects{}
	case EventEnded:
		return StateEnded, effects{signalCompletion: true}
	}
	return s, effects{}
}

type (
	// MonitorConfig tunes the sampling loop. Zero values fall back to the
	// reference behavior: 500ms sampling, 3s skip tolerance, 3s skip notice,
	// completion at 80%.
	MonitorConfig struct {
		SampleInterval       time.Duration
		SkipToleranceSeconds float64
		SkipNoticeDuration   time.Duration
		RequiredWatchPercent float64
	}

	// Handlers receive the Monitor's outputs. All are optional and are
	// invoked from the Monitor's goroutine (or the Dispatch caller).
	Handlers struct {
		OnProgress    func(watchedSeconds, totalSeconds float64)
		OnComplete    func(watchedSeconds, totalSeconds float64)
		OnSkipBlocked func()
	}

	// Monitor owns one playback session. Create one when the player mounts,
	// Stop it when the player unmounts; no state is shared across sessions.
	Monitor struct {
		player   Player
		conf     MonitorConfig
		handlers Handlers

		mu                 sync.Mutex
		state              State
		lastKnownPosition  float64
		skipBlockedUntil   time.Time
		completionSignaled bool

		nowFunc  func() time.Time // mockable
		stopOnce sync.Once
		done     chan struct{}
	}
)

func (c *MonitorConfig) setDefaults() {
	if c.SampleInterval <= 0 {
		c.SampleInterval = 500 * time.Millisecond
	}
	if c.SkipToleranceSeconds <= 0 {
		c.SkipToleranceSeconds = 3
	}
	if c.SkipNoticeDuration <= 0 {
		c.SkipNoticeDuration = 3 * time.Second
	}
	if c.RequiredWatchPercent <= 0 {
		c.RequiredWatchPercent = 80
	}
}

func NewMonitor(player Player, conf MonitorConfig, handlers Handlers) *Monitor {
	conf.setDefaults()
	return &Monitor{
		player:   player,
		conf:     conf,
		handlers: handlers,
		state:    StateIdle,
		nowFunc:  time.Now,
		done:     make(chan struct{}),
	}
}

// Resume seeds the skip-detection baseline with a previously stored
// position. Call it before Start when reopening a lesson, after seeking the
// player there; without the seed the restored position itself reads as a
// forward skip and the first sample would throw the learner back to 0.
func (m *Monitor) Resume(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastKnownPosition = seconds
}

// Start launches the sampling loop. It returns immediately; call Stop to
// release the timer.
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.conf.SampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-m.done:
				return
			}
		}
	}()
}

// Stop cancels the sampling loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Dispatch feeds a discrete player state change into the session.
func (m *Monitor) Dispatch(e Event) {
	m.mu.Lock()
	next, eff := transition(m.state, e)
	m.state = next
	var complete func(float64, float64)
	var watched, total float64
	if eff.signalCompletion && !m.completionSignaled {
		m.completionSignaled = true
		complete = m.handlers.OnComplete
		total = m.player.Duration()
		watched = total
		if watched <= 0 || math.IsNaN(watched) || math.IsInf(watched, 0) {
			watched, total = m.lastKnownPosition, m.lastKnownPosition
		}
	}
	m.mu.Unlock()

	if complete != nil {
		complete(watched, total)
	}
}

// sample reads the player once and applies the skip-detection policy.
func (m *Monitor) sample() {
	cur, dur := m.player.CurrentTime(), m.player.Duration()
	if !validSample(cur, dur) { // player not ready yet
		return
	}

	m.mu.Lock()
	if m.state == StatePlaying && cur-m.lastKnownPosition > m.conf.SkipToleranceSeconds {
		// forward skip attempt: reject and do not advance
		target := m.lastKnownPosition
		m.skipBlockedUntil = m.nowFunc().Add(m.conf.SkipNoticeDuration)
		blocked := m.handlers.OnSkipBlocked
		m.mu.Unlock()

		m.player.Seek(target)
		if blocked != nil {
			blocked()
		}
		return
	}

	// backward seeks (rewatching) are always fine
	m.lastKnownPosition = cur

	var complete func(float64, float64)
	if pct := cur / dur * 100; pct >= m.conf.RequiredWatchPercent && !m.completionSignaled {
		m.completionSignaled = true
		complete = m.handlers.OnComplete
	}
	progress := m.handlers.OnProgress
	m.mu.Unlock()

	if progress != nil {
		progress(cur, dur)
	}
	if complete != nil {
		complete(cur, dur)
	}
}

// State returns the current session state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastKnownPosition returns the furthest accepted playback position.
func (m *Monitor) LastKnownPosition() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastKnownPosition
}

// SkipBlocked reports whether the transient "skip blocked" notice is active;
// it auto-clears SkipNoticeDuration after the offending sample.
func (m *Monitor) SkipBlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nowFunc().Before(m.skipBlockedUntil)
}

func validSample(cur, dur float64) bool {
	if math.IsNaN(cur) || math.IsInf(cur, 0) || math.IsNaN(dur) || math.IsInf(dur, 0) {
		return false
	}
	return dur > 0 && cur >= 0
}
