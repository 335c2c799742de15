package model

import "time"

// LogLevel is the severity of a system log entry.
type LogLevel string

// LogCategory identifies the subsystem that produced a log entry.
type LogCategory string

// ValidLogLevels defines the accepted log levels.
var ValidLogLevels = map[LogLevel]bool{
	"debug": true, "info": true, "warning": true, "error": true, "critical": true,
}

// ValidLogCategories defines the accepted log categories.
var ValidLogCategories = map[LogCategory]bool{
	"agent": true, "post": true, "record": true, "chain": true,
	"peer": true, "system": true, "database": true,
}

type LogResponse struct {
	Logs       []Log  `json:"logs"`
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
	Count      int    `json:"count"`
}

type Log struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Level      string    `json:"level"`
	Category   string    `json:"category"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Source     string    `json:"source"`
	RequestID  string    `json:"requestId,omitempty"`
	HTTPStatus string    `json:"httpStatus,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
}

// LogFilters narrows log queries by level, category, time window and text match.
// Cursor holds the opaque pagination cursor returned by a previous page.
type LogFilters struct {
	Levels     []string
	Categories []string
	StartDate  *time.Time
	EndDate    *time.Time
	Source     string
	Message    string
	SortDir    string
	Cursor     string
	PerPage    int
}
