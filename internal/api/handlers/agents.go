package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
	"github.com/avdmeer/Post-Ledger-Backend/internal/validation"
)

// AgentHandler handles HTTP requests for agent endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the AgentService.
type AgentHandler struct {
	agentService *service.AgentService
	chainService *service.ChainService
	postService  *service.PostService
}

// NewAgentHandler creates a new AgentHandler with the provided service dependencies.
func NewAgentHandler(
	agentService *service.AgentService,
	chainService *service.ChainService,
	postService *service.PostService,
) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		chainService: chainService,
		postService:  postService,
	}
}

// RegisterAgent handles POST requests to register a new agent.
// Registration claims a nickname, opens the agent's chain and returns the
// agent token. The token appears only in this response.
//
// Endpoint: POST /api/agents
// Request Body: RegisterAgentRequest (nickname)
// Response: 201 Created with AgentRegistration
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the nickname is already taken
// Error: 500 Internal Server Error if registration fails
func (h *AgentHandler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterAgentRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRegisterAgent(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	registration, err := h.agentService.RegisterAgent(req.Nickname)
	if err != nil {
		if errors.Is(err, apperrors.ErrNicknameTaken) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrNicknameTaken.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateAgent.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, registration)
}

// Agents handles GET requests to retrieve all registered agents.
//
// Endpoint: GET /api/agents
// Response: 200 OK with array of Agent
// Error: 500 Internal Server Error if retrieval fails
func (h *AgentHandler) Agents(w http.ResponseWriter, _ *http.Request) {
	agents, err := h.agentService.GetAgents()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAgents.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, agents)
}

// GetAgent handles GET requests to retrieve a single agent by ID.
//
// Endpoint: GET /api/agents/{uuid}
// Response: 200 OK with Agent
// Error: 400 Bad Request if the agent ID is invalid (validated by middleware)
// Error: 404 Not Found if the agent does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "uuid")

	agent, err := h.agentService.GetAgent(agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAgentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAgentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAgent.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, agent)
}

// AgentRecords handles GET requests to retrieve an agent's full chain.
// Records come back in commit order with their raw timestamps untouched.
// Peers use this endpoint to replicate chains.
//
// Endpoint: GET /api/agents/{uuid}/records
// Response: 200 OK with array of Record
// Error: 400 Bad Request if the agent ID is invalid (validated by middleware)
// Error: 404 Not Found if the agent does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *AgentHandler) AgentRecords(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "uuid")

	records, err := h.chainService.GetChain(agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAgentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAgentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRecords.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// AgentPosts handles GET requests to retrieve the posts an agent committed,
// in chain order.
//
// Endpoint: GET /api/agents/{uuid}/posts
// Response: 200 OK with array of PostResponse
// Error: 400 Bad Request if the agent ID is invalid (validated by middleware)
// Error: 404 Not Found if the agent does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *AgentHandler) AgentPosts(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "uuid")

	posts, err := h.postService.PostsByAgent(agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAgentNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAgentNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePosts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, posts)
}
