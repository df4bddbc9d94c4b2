package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
)

// ReportSender delivers a progress report to the completion gate.
type ReportSender interface {
	SendReport(ctx context.Context, report progress.ProgressReport) error
}

// Reporter turns Monitor samples into fire-and-forget report calls. A failed
// call is not retried; it is superseded by the next sample. The final state
// is flushed synchronously via Flush when the session ends.
type Reporter struct {
	lessonID string
	sender   ReportSender
	logger   core.Logger

	mu        sync.Mutex
	last      progress.ProgressReport
	hasSample bool

	inflight chan struct{} // capacity 1: newer samples supersede a busy send
}

func NewReporter(lessonID string, sender ReportSender, logger core.Logger) *Reporter {
	return &Reporter{
		lessonID: lessonID,
		sender:   sender,
		logger:   logger,
		inflight: make(chan struct{}, 1),
	}
}

// Report records the latest sample and sends it asynchronously. It never
// blocks the sampling loop: if a send is already in flight the sample is
// kept for the next cycle or the final flush.
func (r *Reporter) Report(watchedSeconds, totalSeconds float64) {
	r.report(watchedSeconds, totalSeconds, false)
}

// ReportCompletion is Report with the explicit completed flag set; the flag
// latches so any later call (including Flush) still carries it.
func (r *Reporter) ReportCompletion(watchedSeconds, totalSeconds float64) {
	r.report(watchedSeconds, totalSeconds, true)
}

func (r *Reporter) report(watched, total float64, completed bool) {
	r.mu.Lock()
	r.last = progress.ProgressReport{
		LessonID:       r.lessonID,
		WatchedSeconds: watched,
		TotalSeconds:   total,
		Completed:      completed || r.last.Completed,
	}
	r.hasSample = true
	rep := r.last
	r.mu.Unlock()

	select {
	case r.inflight <- struct{}{}:
	default:
		return // a send is in progress; this sample is superseded
	}
	go func() {
		defer func() { <-r.inflight }()
		if err := r.sender.SendReport(context.Background(), rep); err != nil {
			// best-effort: the next cycle supersedes this report
			r.logger.Debug(fmt.Sprintf("progress report failed (will be superseded): %v", err))
		}
	}()
}

// Flush synchronously sends the last known sample, if any. Meant for session
// teardown (page unload equivalent); the caller decides whether a failure is
// worth surfacing - the stored model treats it as accepted data loss.
func (r *Reporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	rep, ok := r.last, r.hasSample
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return r.sender.SendReport(ctx, rep)
}

// LastReport returns the most recent report snapshot, and whether any sample
// has been recorded this session.
func (r *Reporter) LastReport() (progress.ProgressReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasSample
}
