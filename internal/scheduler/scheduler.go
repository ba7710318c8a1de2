package scheduler

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"kvadrat-backend/internal/cleanup"
	"kvadrat-backend/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily cleanup job.
type Scheduler struct {
	cron    *cron.Cron
	cleanup *cleanup.Service
	cfg     config.CleanupConfig
}

// NewScheduler creates a new scheduler
func NewScheduler(svc *cleanup.Service, cfg config.CleanupConfig) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		cleanup: svc,
		cfg:     cfg,
	}
}

// Start registers the daily cleanup entry and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.cfg.DailyRunEnabled {
		log.Println("[scheduler] daily cleanup is disabled in configuration")
		return nil
	}

	spec := parseDailyRunTime(s.cfg.DailyRunTime)
	_, err := s.cron.AddFunc(spec, func() {
		log.Println("[scheduler] starting daily cleanup...")
		if _, err := s.RunNow(); err != nil {
			log.Printf("[scheduler] daily cleanup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[scheduler] started with daily cleanup at %s (cron: %s)", s.cfg.DailyRunTime, spec)
	return nil
}

// RunNow executes the cleanup job immediately.
func (s *Scheduler) RunNow() (*cleanup.Result, error) {
	cfg := cleanup.DefaultConfig()
	if s.cfg.RetentionDays > 0 {
		cfg.RetentionDays = s.cfg.RetentionDays
	}
	if s.cfg.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = s.cfg.MaxDeletionCount
	}
	return s.cleanup.Run(cfg)
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// parseDailyRunTime converts "HH:MM" to a cron spec, falling back to 03:00.
func parseDailyRunTime(t string) string {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return "0 3 * * *"
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "0 3 * * *"
	}
	return fmt.Sprintf("%d %d * * *", minute, hour)
}
