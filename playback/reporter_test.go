package playback

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
	logsvc "github.com/joesive47/skillnexus-lms-sub005/services/logger"
)

// fakeSender records reports; an optional gate blocks sends so tests can pin
// a send in flight.
type fakeSender struct {
	mu   sync.Mutex
	sent []progress.ProgressReport
	err  error
	gate chan struct{}
}

func (s *fakeSender) SendReport(_ context.Context, report progress.ProgressReport) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, report)
	return nil
}

func (s *fakeSender) reports() []progress.ProgressReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.ProgressReport(nil), s.sent...)
}

func testLogger() *logsvc.ConsoleLogger {
	return logsvc.NewConsoleLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
}

func TestReporter_completedFlagLatches(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter("les1", sender, testLogger())

	r.ReportCompletion(50, 60)
	r.Report(10, 60) // a rewatch after completion

	rep, ok := r.LastReport()
	require.True(t, ok)
	assert.True(t, rep.Completed, "completed must latch for the rest of the session")
	assert.Equal(t, float64(10), rep.WatchedSeconds)
	assert.Equal(t, "les1", rep.LessonID)
}

func TestReporter_FlushSendsLastSample(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter("les1", sender, testLogger())

	r.ReportCompletion(50, 60)
	require.NoError(t, r.Flush(context.Background()))

	reports := sender.reports()
	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.True(t, last.Completed)
	assert.Equal(t, float64(50), last.WatchedSeconds)
	assert.Equal(t, float64(60), last.TotalSeconds)
}

func TestReporter_FlushWithoutSampleIsNoop(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter("les1", sender, testLogger())

	require.NoError(t, r.Flush(context.Background()))
	assert.Empty(t, sender.reports())
}

func TestReporter_busySendIsSuperseded(t *testing.T) {
	sender := &fakeSender{gate: make(chan struct{})}
	r := NewReporter("les1", sender, testLogger())

	r.Report(10, 60) // pinned in flight by the gate
	r.Report(11, 60) // dropped: a send is already in progress
	r.Report(12, 60) // dropped too, but kept as the latest sample

	rep, ok := r.LastReport()
	require.True(t, ok)
	assert.Equal(t, float64(12), rep.WatchedSeconds)

	close(sender.gate)
	require.Eventually(t, func() bool { return len(sender.reports()) == 1 }, time.Second, time.Millisecond,
		"the pinned send should finish")
	require.NoError(t, r.Flush(context.Background()))

	reports := sender.reports()
	assert.Equal(t, float64(12), reports[len(reports)-1].WatchedSeconds)
}

func TestReporter_failedSendDoesNotSurface(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	r := NewReporter("les1", sender, testLogger())

	r.Report(10, 60) // fire-and-forget: no panic, no error to the caller

	rep, ok := r.LastReport()
	require.True(t, ok)
	assert.Equal(t, float64(10), rep.WatchedSeconds)

	// the final flush does surface the failure for the caller to log
	assert.Error(t, r.Flush(context.Background()))
}
