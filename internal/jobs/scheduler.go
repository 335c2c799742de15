// Package jobs runs the recurring maintenance work: the nightly chain
// audit, log retention, and, when a peer is configured, periodic record
// imports.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

// peerImportTimeout bounds one scheduled import pass end to end.
const peerImportTimeout = 5 * time.Minute

// logPurgeSchedule runs retention in the early morning, after the nightly
// audit has written its summary.
const logPurgeSchedule = "45 4 * * *"

// Scheduler drives the cron jobs. Jobs that are still running when their
// next slot comes up are skipped rather than stacked.
type Scheduler struct {
	cron             *cron.Cron
	chainService     *service.ChainService
	peerService      *service.PeerService
	developerService *service.DeveloperService
}

// NewScheduler creates a new Scheduler with the provided service dependencies.
// peerService may be nil when no peer is configured.
func NewScheduler(
	chainService *service.ChainService,
	peerService *service.PeerService,
	developerService *service.DeveloperService,
) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		chainService:     chainService,
		peerService:      peerService,
		developerService: developerService,
	}
}

// Start registers the jobs on their schedules and starts the scheduler.
// Empty schedules disable the corresponding job; a retention of zero days
// disables the log purge.
func (s *Scheduler) Start(auditSchedule, importSchedule string, logRetentionDays int) error {
	if auditSchedule != "" {
		if _, err := s.cron.AddFunc(auditSchedule, s.runChainAudit); err != nil {
			return fmt.Errorf("failed to schedule chain audit: %w", err)
		}
	}

	if importSchedule != "" && s.peerService != nil {
		if _, err := s.cron.AddFunc(importSchedule, s.runPeerImport); err != nil {
			return fmt.Errorf("failed to schedule peer import: %w", err)
		}
	}

	if logRetentionDays > 0 {
		if _, err := s.cron.AddFunc(logPurgeSchedule, func() { s.runLogPurge(logRetentionDays) }); err != nil {
			return fmt.Errorf("failed to schedule log purge: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runChainAudit() {
	report, err := s.chainService.AuditChains()
	if err != nil {
		s.developerService.Log("error", "chain", "chain audit failed", err.Error(), "chain_audit")
		return
	}

	summary := fmt.Sprintf("chain audit finished: %d agents, %d records, %d issues",
		report.AgentsChecked, report.RecordsChecked, report.Issues())

	if report.Issues() == 0 {
		s.developerService.Log("info", "chain", summary, "", "chain_audit")
		return
	}

	details, err := json.Marshal(report)
	if err != nil {
		details = []byte(err.Error())
	}
	s.developerService.Log("warning", "chain", summary, string(details), "chain_audit")
}

func (s *Scheduler) runPeerImport() {
	ctx, cancel := context.WithTimeout(context.Background(), peerImportTimeout)
	defer cancel()

	// ImportFromPeer writes its own summary entry on success.
	if _, err := s.peerService.ImportFromPeer(ctx); err != nil {
		s.developerService.Log("error", "peer", "scheduled peer import failed", err.Error(), "peer_import")
	}
}

func (s *Scheduler) runLogPurge(retentionDays int) {
	deleted, err := s.developerService.PurgeLogsOlderThan(retentionDays)
	if err != nil {
		s.developerService.Log("error", "system", "log purge failed", err.Error(), "log_purge")
		return
	}

	if deleted > 0 {
		message := fmt.Sprintf("log purge removed %d entries older than %d days", deleted, retentionDays)
		s.developerService.Log("info", "system", message, "", "log_purge")
	}
}
