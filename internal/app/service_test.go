package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "worker", startErr: errors.New("boom")}
	blocking := &fakeService{name: "http", block: true}
	runner := NewRunner(zap.NewNop().Sugar(), time.Second, failing, blocking)

	err := runner.Run(context.Background())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("run should surface the first failure, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped after a failure")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &fakeService{name: "http", block: true}
	runner := NewRunner(zap.NewNop().Sugar(), time.Second, blocking)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	// 信号取消是正常停机，不算错误
	if err := runner.Run(ctx); err != nil {
		t.Fatalf("cancellation should not be an error: %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("service should be stopped after cancel")
	}
}

func TestRunnerRejectsEmptyServiceList(t *testing.T) {
	runner := NewRunner(zap.NewNop().Sugar(), time.Second)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("empty runner should error")
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"", ModeAll},
		{"all", ModeAll},
		{"API", ModeAPI},
		{" worker ", ModeWorker},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseMode(%q) = %v, %v", tc.in, got, err)
		}
	}
	if _, err := ParseMode("batch"); err == nil {
		t.Fatalf("unknown mode should error")
	}
}
