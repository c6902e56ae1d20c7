package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Service 可被 Runner 托管的后台服务（HTTP API、队列 Worker）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 服务运行器
// 任一服务先行退出或上层取消都会触发整体停机，停机动作受超时约束。
type Runner struct {
	services    []Service
	logger      *zap.SugaredLogger
	stopTimeout time.Duration
}

// NewRunner 创建服务运行器
func NewRunner(log *zap.SugaredLogger, stopTimeout time.Duration, services ...Service) *Runner {
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	return &Runner{services: services, logger: log, stopTimeout: stopTimeout}
}

// Run 启动全部服务并阻塞，直到收到取消或任一服务退出
func (r *Runner) Run(ctx context.Context) error {
	if len(r.services) == 0 {
		return errors.New("no services to run")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.services))
	for _, svc := range r.services {
		go func(svc Service) {
			r.logger.Infow("service_start", "service", svc.Name())
			errCh <- svc.Start(ctx)
			r.logger.Infow("service_exit", "service", svc.Name())
		}(svc)
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer stopCancel()
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			r.logger.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
