package cron

import (
	"Snapfeed/internal/api/config"
	"Snapfeed/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const (
	defaultCounterRepairSpec = "0 */30 * * * *"
	defaultMediaCleanupSpec  = "0 0 * * * *"
	defaultPopularTagsSpec   = "0 */10 * * * *"
)

type Manager struct {
	engine           *cron.Cron
	cfg              config.CronConfig
	counterRepairJob *job.CounterRepairJob
	mediaCleanupJob  *job.MediaCleanupJob
	popularTagsJob   *job.PopularTagsJob
}

func NewCronManager(
	cfg config.CronConfig,
	counterRepairJob *job.CounterRepairJob,
	mediaCleanupJob *job.MediaCleanupJob,
	popularTagsJob *job.PopularTagsJob,
) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		cfg:              cfg,
		counterRepairJob: counterRepairJob,
		mediaCleanupJob:  mediaCleanupJob,
		popularTagsJob:   popularTagsJob,
	}
}

// RegisterJobs 注册定时任务，未配置表达式时使用默认值
func (s *Manager) RegisterJobs() error {
	jobs := []struct {
		spec string
		def  string
		job  cron.Job
	}{
		{s.cfg.CounterRepair, defaultCounterRepairSpec, s.counterRepairJob},
		{s.cfg.MediaCleanup, defaultMediaCleanupSpec, s.mediaCleanupJob},
		{s.cfg.PopularTags, defaultPopularTagsSpec, s.popularTagsJob},
	}
	for _, j := range jobs {
		spec := j.spec
		if spec == "" {
			spec = j.def
		}
		if _, err := s.engine.AddJob(spec, j.job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
