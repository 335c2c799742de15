package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
)

// DeveloperService handles the system log: querying it for the developer
// endpoints and writing durable entries for events worth keeping across
// restarts, like audit outcomes and peer imports.
type DeveloperService struct {
	logRepo *repository.LogRepository
}

// NewDeveloperService creates a new DeveloperService with the provided repository dependencies.
func NewDeveloperService(
	logRepo *repository.LogRepository,
) *DeveloperService {
	return &DeveloperService{
		logRepo: logRepo,
	}
}

// GetLogs retrieves log entries matching the given filters.
func (s *DeveloperService) GetLogs(ctx context.Context, filters *model.LogFilters) (model.LogResponse, error) {
	return s.logRepo.QueryLogs(filters)
}

// ClearLogs removes all log entries and reports how many were deleted.
func (s *DeveloperService) ClearLogs() (int64, error) {
	return s.logRepo.DeleteLogs()
}

// PurgeLogsOlderThan removes log entries older than the given number of days
// and reports how many were deleted.
func (s *DeveloperService) PurgeLogsOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return s.logRepo.DeleteLogsBefore(cutoff)
}

// Log writes a durable log entry. Failures go to the process log and are
// swallowed: logging must never fail the operation that triggered it.
func (s *DeveloperService) Log(level model.LogLevel, category model.LogCategory, message, details, source string) {
	entry := model.Log{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Level:     string(level),
		Category:  string(category),
		Message:   message,
		Details:   details,
		Source:    source,
	}

	if err := s.logRepo.InsertLog(entry); err != nil {
		log.Printf("failed to write system log entry: %v", err)
	}
}
