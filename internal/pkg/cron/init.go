package cron

import (
	"context"
	log "log/slog"
)

// Run 注册并启动全部定时任务，阻塞到 ctx 结束后等待运行中的任务退出
func Run(ctx context.Context, mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	log.Info("Cron Jobs started", "entries", len(mgr.engine.Entries()))

	<-ctx.Done()
	mgr.Stop()
	return nil
}
