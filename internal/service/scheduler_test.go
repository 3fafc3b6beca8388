package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
)

type fakeTicker struct {
	mu       sync.Mutex
	promotes int
	sweeps   int
}

func (f *fakeTicker) StartDueAuctions(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promotes++
}

func (f *fakeTicker) ServiceLiveAuctions(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
}

func (f *fakeTicker) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.promotes, f.sweeps
}

func TestScheduler_RunsBothSweepsOnStartup(t *testing.T) {
	ft := &fakeTicker{}
	s := NewScheduler(ft, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Intervals are an hour, so anything counted came from the startup pass.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	promotes, sweeps := ft.counts()
	check.Equal(t, 1, promotes)
	check.Equal(t, 1, sweeps)
}

func TestScheduler_TicksUntilCancelled(t *testing.T) {
	ft := &fakeTicker{}
	s := NewScheduler(ft, 10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	promotes, sweeps := ft.counts()
	check.True(t, promotes > 1)
	check.True(t, sweeps > 1)

	// No further ticks after cancel.
	time.Sleep(30 * time.Millisecond)
	p2, s2 := ft.counts()
	check.Equal(t, promotes, p2)
	check.Equal(t, sweeps, s2)
}
