package app

import (
	"context"
	"errors"
	"os/signal"

	"github.com/maya-downloads/api/internal/provider"
	"github.com/maya-downloads/api/internal/router"
	"github.com/maya-downloads/api/internal/worker"
)

// BuildRunner 按启动模式组装服务
func BuildRunner(opts Options) (*Runner, error) {
	cfg := opts.Config
	container := provider.NewContainer(cfg)

	var services []Service
	if opts.Mode == ModeAll || opts.Mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}
	// 队列关闭时 all 模式静默跳过 Worker
	if opts.Mode == ModeWorker || (opts.Mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(opts.Logger, opts.ShutdownTimeout, services...), nil
}

// Run 应用启动入口：组装服务并托管到退出信号
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Host+":"+opts.Config.Server.Port, "mode", string(opts.Mode))
	return runner.Run(ctx)
}
