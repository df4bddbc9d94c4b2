// Command player is a playback session simulator. It drives the playback
// Monitor and Reporter against a running API, advancing a fake video player
// on the wall clock, and can script a forward-skip attempt to demonstrate
// the anti-skip policy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joesive47/skillnexus-lms-sub005/playback"
	logsvc "github.com/joesive47/skillnexus-lms-sub005/services/logger"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8000", "API base URL")
		token    = flag.String("token", "", "JWT bearer token (from /v1/users/login)")
		lessonID = flag.String("lesson", "", "lesson ID to watch")
		duration = flag.Float64("duration", 60, "simulated media duration in seconds")
		rate     = flag.Float64("rate", 1, "playback speed multiplier")
		skipAt   = flag.Float64("skip-at", 0, "position (seconds) at which to attempt a forward skip; 0 disables")
		skipTo   = flag.Float64("skip-to", 0, "position (seconds) to skip to")
	)
	flag.Parse()

	logger := logsvc.NewConsoleLogger(log.New(os.Stdout, "PLAYER : ", log.LstdFlags|log.Lmicroseconds))
	if *lessonID == "" {
		logger.Fatal("-lesson is required")
	}

	client := playback.NewClient(*apiURL, *token)
	player := newSimulatedPlayer(*duration, *rate)

	// resume from the stored record, mirroring a player reopening a lesson
	var resumeAt float64
	if rec, err := client.GetProgress(context.Background(), *lessonID); err != nil {
		logger.Warn(fmt.Sprintf("could not fetch stored progress: %v", err))
	} else if rec != nil {
		resumeAt = rec.WatchedSeconds
		player.Seek(resumeAt)
		logger.Info(fmt.Sprintf("resuming at %.1fs (completed=%t)", resumeAt, rec.Completed))
	}

	reporter := playback.NewReporter(*lessonID, client, logger)
	done := make(chan struct{})
	monitor := playback.NewMonitor(player, playback.MonitorConfig{}, playback.Handlers{
		OnProgress: func(watched, total float64) {
			reporter.Report(watched, total)
		},
		OnComplete: func(watched, total float64) {
			reporter.ReportCompletion(watched, total)
			logger.Info(fmt.Sprintf("lesson complete at %.1f/%.1fs", watched, total))
		},
		OnSkipBlocked: func() {
			logger.Warn("skipping is not allowed; returning to the last watched position")
		},
	})
	monitor.Resume(resumeAt)

	monitor.Start()
	defer monitor.Stop()
	player.Play()
	monitor.Dispatch(playback.EventPlay)

	if *skipAt > 0 {
		go player.scheduleSkip(*skipAt, *skipTo)
	}
	go func() {
		player.waitForEnd()
		monitor.Dispatch(playback.EventEnded)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-done:
	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: stopping session", sig))
	}

	// final flush, the page-unload equivalent
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := reporter.Flush(ctx); err != nil {
		logger.Error(fmt.Sprintf("final progress flush failed: %v", err))
	}
}

// simulatedPlayer advances its position on the wall clock while playing.
type simulatedPlayer struct {
	mu       sync.Mutex
	position float64
	duration float64
	rate     float64
	playing  bool
	lastTick time.Time
}

var _ playback.Player = (*simulatedPlayer)(nil)

func newSimulatedPlayer(duration, rate float64) *simulatedPlayer {
	return &simulatedPlayer{duration: duration, rate: rate}
}

func (p *simulatedPlayer) advance() {
	now := time.Now()
	if p.playing {
		p.position += now.Sub(p.lastTick).Seconds() * p.rate
		if p.position >= p.duration {
			p.position = p.duration
			p.playing = false
		}
	}
	p.lastTick = now
}

func (p *simulatedPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	p.playing = true
}

func (p *simulatedPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	return p.position
}

func (p *simulatedPlayer) Duration() float64 {
	return p.duration
}

func (p *simulatedPlayer) Seek(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance()
	p.position = seconds
}

// scheduleSkip simulates the user dragging the scrubber forward once the
// playhead reaches at.
func (p *simulatedPlayer) scheduleSkip(at, to float64) {
	for {
		if p.CurrentTime() >= at {
			p.Seek(to)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (p *simulatedPlayer) waitForEnd() {
	for p.CurrentTime() < p.duration {
		time.Sleep(200 * time.Millisecond)
	}
}
