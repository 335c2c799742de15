package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
)

// LogRepository provides data access methods for the system_logs table.
type LogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new LogRepository with the provided database connection.
func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// InsertLog stores a single log entry.
func (s *LogRepository) InsertLog(logEntry model.Log) error {
	query := `
          INSERT INTO system_logs (id, timestamp, level, category, message, details, source, request_id, http_status, ip_address, user_agent)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
      `
	_, err := s.db.Exec(query,
		logEntry.ID,
		logEntry.Timestamp.UTC().Format(time.RFC3339Nano),
		logEntry.Level,
		logEntry.Category,
		logEntry.Message,
		logEntry.Details,
		logEntry.Source,
		logEntry.RequestID,
		logEntry.HTTPStatus,
		logEntry.IPAddress,
		logEntry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into system_logs table: %w", err)
	}

	return nil
}

// QueryLogs retrieves log entries matching the given filters, using cursor
// pagination. One extra row is fetched to decide whether more pages exist;
// the cursor encodes the timestamp and ID of the last returned row.
//
//nolint:gocyclo // Filter clauses are assembled one by one; splitting this up would obscure the query.
func (s *LogRepository) QueryLogs(filters *model.LogFilters) (model.LogResponse, error) {
	query := `
          SELECT id, timestamp, level, category, message, details, source, request_id, http_status, ip_address, user_agent
          FROM system_logs
          WHERE 1=1
      `
	var args []any

	if len(filters.Levels) > 0 {
		placeholders := make([]string, len(filters.Levels))
		for i, level := range filters.Levels {
			placeholders[i] = "?"
			args = append(args, level)
		}
		query += " AND level IN (" + strings.Join(placeholders, ",") + ")"
	}

	if len(filters.Categories) > 0 {
		placeholders := make([]string, len(filters.Categories))
		for i, category := range filters.Categories {
			placeholders[i] = "?"
			args = append(args, category)
		}
		query += " AND category IN (" + strings.Join(placeholders, ",") + ")"
	}

	if filters.StartDate != nil {
		query += " AND timestamp >= ?"
		args = append(args, filters.StartDate.UTC().Format(time.RFC3339Nano))
	}

	if filters.EndDate != nil {
		query += " AND timestamp <= ?"
		args = append(args, filters.EndDate.UTC().Format(time.RFC3339Nano))
	}

	if filters.Source != "" {
		query += " AND source = ?"
		args = append(args, filters.Source)
	}

	if filters.Message != "" {
		query += " AND message LIKE ?"
		args = append(args, "%"+filters.Message+"%")
	}

	comparator := ">"
	direction := "ASC"
	if filters.SortDir == "desc" {
		comparator = "<"
		direction = "DESC"
	}

	if filters.Cursor != "" {
		cursorTime, cursorID, err := splitLogCursor(filters.Cursor)
		if err != nil {
			return model.LogResponse{}, err
		}
		query += " AND (timestamp " + comparator + " ? OR (timestamp = ? AND id " + comparator + " ?))"
		args = append(args, cursorTime, cursorTime, cursorID)
	}

	//#nosec G202 -- Safe: direction is restricted to ASC/DESC above, never user input.
	query += " ORDER BY timestamp " + direction + ", id " + direction + " LIMIT ?"
	args = append(args, filters.PerPage+1)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return model.LogResponse{}, fmt.Errorf("failed to query system_logs table: %w", err)
	}
	defer rows.Close()

	logs := []model.Log{}
	timestamps := []string{}

	for rows.Next() {
		var timestampStr string
		var details, source, requestID, httpStatus, ipAddress, userAgent sql.NullString
		var l model.Log

		err := rows.Scan(
			&l.ID,
			&timestampStr,
			&l.Level,
			&l.Category,
			&l.Message,
			&details,
			&source,
			&requestID,
			&httpStatus,
			&ipAddress,
			&userAgent,
		)
		if err != nil {
			return model.LogResponse{}, fmt.Errorf("failed to scan system_logs table results: %w", err)
		}

		l.Timestamp, err = ParseTime(timestampStr)
		if err != nil {
			return model.LogResponse{}, fmt.Errorf("failed to parse log timestamp: %w", err)
		}

		l.Details = details.String
		l.Source = source.String
		l.RequestID = requestID.String
		l.HTTPStatus = httpStatus.String
		l.IPAddress = ipAddress.String
		l.UserAgent = userAgent.String

		logs = append(logs, l)
		timestamps = append(timestamps, timestampStr)
	}

	if err = rows.Err(); err != nil {
		return model.LogResponse{}, fmt.Errorf("error iterating system_logs table: %w", err)
	}

	response := model.LogResponse{Logs: logs, Count: len(logs)}

	if len(logs) > filters.PerPage {
		response.Logs = logs[:filters.PerPage]
		response.Count = filters.PerPage
		response.HasMore = true
		last := response.Logs[len(response.Logs)-1]
		response.NextCursor = timestamps[len(response.Logs)-1] + "|" + last.ID
	}

	return response, nil
}

// DeleteLogs removes all log entries and reports how many were deleted.
func (s *LogRepository) DeleteLogs() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM system_logs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from system_logs table: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// DeleteLogsBefore removes log entries older than the cutoff and reports how
// many were deleted. Stored timestamps are RFC 3339 in UTC, so the string
// comparison matches chronological order.
func (s *LogRepository) DeleteLogsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM system_logs WHERE timestamp < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from system_logs table: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// splitLogCursor unpacks a "timestamp|id" pagination cursor.
func splitLogCursor(cursor string) (string, string, error) {
	parts := strings.SplitN(cursor, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pagination cursor: %q", cursor)
	}
	return parts[0], parts[1], nil
}
