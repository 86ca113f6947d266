package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type crashingWorker struct {
	runs *atomic.Int32
}

func (w crashingWorker) Run(context.Context) error {
	w.runs.Add(1)
	panic("boom")
}

type finishingWorker struct{}

func (finishingWorker) Run(context.Context) error { return nil }

func TestSupervisor_Restarts_A_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelError), 5*time.Millisecond)

	var runs atomic.Int32
	sup.Add(crashingWorker{runs: &runs})

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// The worker keeps being restarted after each panic
	req.Eventually(func() bool {
		return runs.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	// And Stop ends the supervision loop
	sup.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: supervisor did not stop")
	}
}

func TestSupervisor_Finished_Worker_Is_Not_Restarted(t *testing.T) {
	req := require.New(t)
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelError), 5*time.Millisecond)
	sup.Add(finishingWorker{})

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Run returns on its own once every worker finished cleanly
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: supervisor kept a finished worker alive")
	}
}
