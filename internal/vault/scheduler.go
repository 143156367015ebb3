package vault

import (
	"epd/internal/providers"
	"epd/internal/services"
	"epd/internal/structures"
	"epd/internal/vault/interfaces"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler drives the vault's background work: periodic persistence of
// the profile snapshot and usage log, and the storage health probe. It
// also implements the synchronous Persist used by mutating handlers and
// shutdown.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.ProfileServiceInterface
	fileManager *FileManager
	usageLog    interfaces.UsageLogInterface
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if !s.service.Dirty() {
			return
		}
		if err := s.Persist(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted vault to %s", ProfilesPath(s.config))
	})

	probeInterval := s.config.Emergency.ProbeInterval
	if probeInterval >= time.Second {
		s.cron.AddFunc(gron.Every(probeInterval), s.probe)
	}

	s.cron.Start()
}

func (s *Scheduler) probe() {
	health := s.service.StorageHealth()
	s.metrics.SetStorageProbeDuration(health.Latency)
	s.metrics.SetProfilesTotal(health.ProfileCount)
	s.metrics.SetUsageEventsTotal(s.usageLog.Count())

	if !health.IsHealthy {
		s.logger.Warnf(providers.TypeApp, "Storage probe degraded: full scan of %d profiles took %s", health.ProfileCount, health.Latency)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if err := s.fileManager.LoadFromFile(ProfilesPath(s.config)); err != nil {
		return err
	}
	return s.usageLog.Restore()
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	if err := s.fileManager.SaveToFile(ProfilesPath(s.config)); err != nil {
		return err
	}
	if err := s.usageLog.Flush(); err != nil {
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	s.service.MarkClean()
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.ProfileServiceInterface, fileManager *FileManager, usageLog interfaces.UsageLogInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		usageLog:    usageLog,
		metrics:     metrics,
	}
}
