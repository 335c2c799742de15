package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
)

// RecordRepository provides data access methods for the records table.
// It handles appending records to agent chains and walking them back.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository with the provided database connection.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// CreateRecord appends a record to an agent's chain. The UNIQUE constraint
// on (agent_id, seq) rejects concurrent appends that raced for the same
// chain position.
func (s *RecordRepository) CreateRecord(record model.Record) error {
	query := `
          INSERT INTO records (id, agent_id, type, entry_address, in_reply_to, timestamp, canonical, prev_id, seq)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
      `
	_, err := s.db.Exec(query,
		record.ID,
		record.AgentID,
		record.Type,
		record.EntryAddress,
		record.InReplyTo,
		record.Timestamp,
		record.Canonical,
		record.PrevID,
		record.Seq,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into records table: %w", err)
	}

	return nil
}

func (s *RecordRepository) GetRecordOnID(recordID string) (model.Record, error) {
	query := `
          SELECT id, agent_id, type, entry_address, in_reply_to, timestamp, canonical, prev_id, seq
          FROM records
          WHERE id = ?
      `
	row := s.db.QueryRow(query, recordID)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.Record{}, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to query records table: %w", err)
	}

	return record, nil
}

// GetChainHead retrieves the most recent record of an agent's chain.
// Returns apperrors.ErrChainEmpty if the agent has no records yet.
func (s *RecordRepository) GetChainHead(agentID string) (model.Record, error) {
	query := `
          SELECT id, agent_id, type, entry_address, in_reply_to, timestamp, canonical, prev_id, seq
          FROM records
          WHERE agent_id = ?
          ORDER BY seq DESC
          LIMIT 1
      `
	row := s.db.QueryRow(query, agentID)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return model.Record{}, apperrors.ErrChainEmpty
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to query records table: %w", err)
	}

	return record, nil
}

// GetRecordsOnAgentID retrieves an agent's full chain in commit order.
// Returns an empty slice if the agent has no records.
func (s *RecordRepository) GetRecordsOnAgentID(agentID string) ([]model.Record, error) {
	query := `
          SELECT id, agent_id, type, entry_address, in_reply_to, timestamp, canonical, prev_id, seq
          FROM records
          WHERE agent_id = ?
          ORDER BY seq ASC
      `
	rows, err := s.db.Query(query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records table: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan records table results: %w", err)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records table: %w", err)
	}

	return records, nil
}

// GetRecordsMissingEntries retrieves post records whose entry has not been
// stored. This happens when a peer serves chain headers ahead of entries;
// the chain audit reports these until the entries arrive.
func (s *RecordRepository) GetRecordsMissingEntries() ([]model.Record, error) {
	query := `
          SELECT records.id, records.agent_id, records.type, records.entry_address,
                 records.in_reply_to, records.timestamp, records.canonical, records.prev_id, records.seq
          FROM records
          LEFT JOIN posts ON posts.address = records.entry_address
          WHERE records.type = 'post' AND posts.address IS NULL
          ORDER BY records.agent_id, records.seq
      `
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records or posts table: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan records table results: %w", err)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records table: %w", err)
	}

	return records, nil
}

// scanner covers both sql.Row and sql.Rows so record scanning stays in one place.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.Record, error) {
	var inReplyToStr, canonicalStr, prevIDStr sql.NullString
	var record model.Record

	err := row.Scan(
		&record.ID,
		&record.AgentID,
		&record.Type,
		&record.EntryAddress,
		&inReplyToStr,
		&record.Timestamp,
		&canonicalStr,
		&prevIDStr,
		&record.Seq,
	)
	if err != nil {
		return model.Record{}, err
	}

	if inReplyToStr.Valid {
		address := model.Address(inReplyToStr.String)
		record.InReplyTo = &address
	}
	if canonicalStr.Valid {
		record.Canonical = &canonicalStr.String
	}
	if prevIDStr.Valid {
		record.PrevID = &prevIDStr.String
	}

	return record, nil
}
