package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// AgentService handles agent registration and token verification.
// Registering an agent opens its chain with a genesis record and mints a
// fernet token the agent uses to commit posts.
type AgentService struct {
	agentRepo  *repository.AgentRepository
	recordRepo *repository.RecordRepository
	keys       []*fernet.Key
	tokenTTL   timestamp.Timeout
}

// NewAgentService creates a new AgentService with the provided repository dependencies.
// The fernet keys sign agent tokens; the first key is used for minting, all
// keys are accepted during verification so keys can be rotated.
func NewAgentService(
	agentRepo *repository.AgentRepository,
	recordRepo *repository.RecordRepository,
	keys []*fernet.Key,
	tokenTTL timestamp.Timeout,
) *AgentService {
	return &AgentService{
		agentRepo:  agentRepo,
		recordRepo: recordRepo,
		keys:       keys,
		tokenTTL:   tokenTTL,
	}
}

// RegisterAgent claims a nickname, opens the agent's chain with a genesis
// record and mints the agent's token. The token is only returned here;
// it cannot be recovered afterwards.
func (s *AgentService) RegisterAgent(nickname string) (model.AgentRegistration, error) {
	_, err := s.agentRepo.GetAgentOnNickname(nickname)
	if err == nil {
		return model.AgentRegistration{}, apperrors.ErrNicknameTaken
	}
	if !errors.Is(err, apperrors.ErrAgentNotFound) {
		return model.AgentRegistration{}, fmt.Errorf("failed to check nickname: %w", err)
	}

	agent := model.Agent{
		ID:        uuid.New().String(),
		Nickname:  nickname,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.agentRepo.CreateAgent(agent); err != nil {
		return model.AgentRegistration{}, err
	}

	// The genesis record anchors the chain: its entry address is derived
	// from the agent identity and its timestamp is server-stamped, so it
	// always canonicalizes.
	genesisAddress := model.NewAddress([]byte("agent:" + agent.ID))
	stamp := timestamp.New(agent.CreatedAt.Format(time.RFC3339))
	canonical := ""
	if instant, err := stamp.Instant(); err == nil {
		canonical = instant.RFC3339()
	}

	genesis := model.Record{
		ID:           uuid.New().String(),
		AgentID:      agent.ID,
		Type:         model.RecordTypeGenesis,
		EntryAddress: genesisAddress,
		Timestamp:    stamp,
		Canonical:    &canonical,
		Seq:          1,
	}

	if err := s.recordRepo.CreateRecord(genesis); err != nil {
		return model.AgentRegistration{}, err
	}

	token, err := s.mintToken(agent.ID)
	if err != nil {
		return model.AgentRegistration{}, err
	}

	return model.AgentRegistration{Agent: agent, Token: token}, nil
}

// GetAgents retrieves all registered agents.
func (s *AgentService) GetAgents() ([]model.Agent, error) {
	return s.agentRepo.GetAgents()
}

// GetAgent retrieves a single agent by ID.
func (s *AgentService) GetAgent(agentID string) (model.Agent, error) {
	return s.agentRepo.GetAgentOnID(agentID)
}

// Authenticate resolves a bearer token to the agent it was minted for.
// Returns apperrors.ErrTokenInvalid for forged, corrupted or expired tokens.
func (s *AgentService) Authenticate(token string) (model.Agent, error) {
	message := fernet.VerifyAndDecrypt([]byte(token), s.tokenTTL.Duration(), s.keys)
	if message == nil {
		return model.Agent{}, apperrors.ErrTokenInvalid
	}

	agent, err := s.agentRepo.GetAgentOnID(string(message))
	if err != nil {
		if errors.Is(err, apperrors.ErrAgentNotFound) {
			return model.Agent{}, apperrors.ErrTokenInvalid
		}
		return model.Agent{}, err
	}

	return agent, nil
}

func (s *AgentService) mintToken(agentID string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(agentID), s.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to mint agent token: %w", err)
	}
	return string(token), nil
}
