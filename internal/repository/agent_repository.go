package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
)

// AgentRepository provides data access methods for the agents table.
// It handles registering agents and looking them up by ID or nickname.
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new AgentRepository with the provided database connection.
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// CreateAgent inserts a new agent row.
func (r *AgentRepository) CreateAgent(agent model.Agent) error {
	query := `
          INSERT INTO agents (id, nickname, created_at)
          VALUES (?, ?, ?)
      `
	_, err := r.db.Exec(query,
		agent.ID,
		agent.Nickname,
		agent.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into agents table: %w", err)
	}

	return nil
}

// GetAgents retrieves all registered agents ordered by registration time.
// Returns an empty slice if no agents are registered.
func (r *AgentRepository) GetAgents() ([]model.Agent, error) {
	query := `
          SELECT id, nickname, created_at
          FROM agents
          ORDER BY created_at, id
      `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents table: %w", err)
	}
	defer rows.Close()

	agents := []model.Agent{}

	for rows.Next() {
		var createdAtStr string
		var a model.Agent

		err := rows.Scan(
			&a.ID,
			&a.Nickname,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agents table results: %w", err)
		}

		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse agent creation date: %w", err)
		}

		agents = append(agents, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents table: %w", err)
	}

	return agents, nil
}

func (r *AgentRepository) GetAgentOnID(agentID string) (model.Agent, error) {
	query := `
          SELECT id, nickname, created_at
          FROM agents
          WHERE id = ?
      `
	var createdAtStr string
	var a model.Agent

	err := r.db.QueryRow(query, agentID).Scan(
		&a.ID,
		&a.Nickname,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Agent{}, apperrors.ErrAgentNotFound
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("failed to query agents table: %w", err)
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Agent{}, fmt.Errorf("failed to parse agent creation date: %w", err)
	}

	return a, nil
}

// GetAgentOnNickname looks up an agent by its unique nickname.
// Returns apperrors.ErrAgentNotFound if the nickname is unclaimed.
func (r *AgentRepository) GetAgentOnNickname(nickname string) (model.Agent, error) {
	query := `
          SELECT id, nickname, created_at
          FROM agents
          WHERE nickname = ?
      `
	var createdAtStr string
	var a model.Agent

	err := r.db.QueryRow(query, nickname).Scan(
		&a.ID,
		&a.Nickname,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Agent{}, apperrors.ErrAgentNotFound
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("failed to query agents table: %w", err)
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Agent{}, fmt.Errorf("failed to parse agent creation date: %w", err)
	}

	return a, nil
}
