// Package scheduler runs the periodic background sweeps: overdue reminder
// notification, quotation expiry, queued dispatch retry and pending
// bill-scan extraction.
package scheduler

import (
	"context"
	"sync"
	"time"

	appdocument "github.com/printcloud/backend/internal/application/document"
	apppurchasing "github.com/printcloud/backend/internal/application/purchasing"
	appsales "github.com/printcloud/backend/internal/application/sales"
	"github.com/printcloud/backend/internal/domain/identity"
	infraconfig "github.com/printcloud/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultSweepInterval = time.Minute
	defaultBatchSize     = 50
	sweepTimeout         = 5 * time.Minute
)

// Sweeper owns the background sweep loops. Each loop runs on its own
// interval and is independent of the others.
type Sweeper struct {
	reminderService      *appdocument.ReminderService
	communicationService *appdocument.CommunicationService
	quotationService     *appsales.QuotationService
	scanService          *apppurchasing.BillScanService
	userRepo             identity.UserRepository
	config               infraconfig.SchedulerConfig
	logger               *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweeper creates the background sweeper
func NewSweeper(
	reminderService *appdocument.ReminderService,
	communicationService *appdocument.CommunicationService,
	quotationService *appsales.QuotationService,
	scanService *apppurchasing.BillScanService,
	userRepo identity.UserRepository,
	config infraconfig.SchedulerConfig,
	logger *zap.Logger,
) *Sweeper {
	if config.ReminderSweepInterval == 0 {
		config.ReminderSweepInterval = defaultSweepInterval
	}
	if config.QuotationSweepInterval == 0 {
		config.QuotationSweepInterval = defaultSweepInterval
	}
	if config.ScanWorkerInterval == 0 {
		config.ScanWorkerInterval = defaultSweepInterval
	}
	if config.SweepBatchSize <= 0 {
		config.SweepBatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sweeper{
		reminderService:      reminderService,
		communicationService: communicationService,
		quotationService:     quotationService,
		scanService:          scanService,
		userRepo:             userRepo,
		config:               config,
		logger:               logger,
	}
}

// Start launches the sweep loops
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Background sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(3)
	go s.runLoop(ctx, "reminder", s.config.ReminderSweepInterval, s.sweepReminders)
	go s.runLoop(ctx, "quotation", s.config.QuotationSweepInterval, s.sweepTenants)
	go s.runLoop(ctx, "scan", s.config.ScanWorkerInterval, s.sweepScans)

	s.logger.Info("Background sweeper started",
		zap.Duration("reminder_interval", s.config.ReminderSweepInterval),
		zap.Duration("quotation_interval", s.config.QuotationSweepInterval),
		zap.Duration("scan_interval", s.config.ScanWorkerInterval),
		zap.Int("batch_size", s.config.SweepBatchSize),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Background sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Background sweeper stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the sweeper is running
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Sweeper) runLoop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sweep loop stopping", zap.String("loop", name))
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			sweep(sweepCtx)
			cancel()
		}
	}
}

// sweepReminders notifies overdue reminders across all tenants
func (s *Sweeper) sweepReminders(ctx context.Context) {
	notified, err := s.reminderService.NotifyOverdue(ctx, s.config.SweepBatchSize)
	if err != nil {
		s.logger.Error("overdue reminder sweep failed", zap.Error(err))
		return
	}
	if notified > 0 {
		s.logger.Info("Overdue reminders notified", zap.Int("count", notified))
	}
}

// sweepTenants runs the per-tenant sweeps: quotation expiry and retry of
// queued document dispatches
func (s *Sweeper) sweepTenants(ctx context.Context) {
	tenantIDs, err := s.userRepo.ListTenantIDs(ctx)
	if err != nil {
		s.logger.Error("tenant listing failed", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}

		expired, err := s.quotationService.ExpireDue(ctx, tenantID, s.config.SweepBatchSize)
		if err != nil {
			s.logger.Error("quotation expiry sweep failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		} else if expired > 0 {
			s.logger.Info("Quotations expired",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("count", expired))
		}

		retried, err := s.communicationService.ProcessQueued(ctx, tenantID, s.config.SweepBatchSize)
		if err != nil {
			s.logger.Error("queued dispatch sweep failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		} else if retried > 0 {
			s.logger.Info("Queued dispatches retried",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("count", retried))
		}
	}
}

// sweepScans drains uploaded bill scans through extraction
func (s *Sweeper) sweepScans(ctx context.Context) {
	processed, err := s.scanService.ProcessPending(ctx, s.config.SweepBatchSize)
	if err != nil {
		s.logger.Error("pending scan sweep failed", zap.Error(err))
		return
	}
	if processed > 0 {
		s.logger.Info("Pending scans processed", zap.Int("count", processed))
	}
}
