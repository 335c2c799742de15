package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/middleware"
	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
	"github.com/avdmeer/Post-Ledger-Backend/internal/api/response"
	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
	"github.com/avdmeer/Post-Ledger-Backend/internal/validation"
)

// PostHandler handles HTTP requests for post endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the PostService.
type PostHandler struct {
	postService *service.PostService
}

// NewPostHandler creates a new PostHandler with the provided service dependency.
func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// HashPostResponse carries the address a post would be stored under.
type HashPostResponse struct {
	Address model.Address `json:"address"`
}

// CreatePost handles POST requests to commit a new post to the caller's chain.
// The timestamp field is optional and stored exactly as supplied; unparsable
// values are accepted and only surface when the post is rendered or sorted.
// With no timestamp, the server stamps the post itself.
//
// Endpoint: POST /api/posts
// Request Body: CreatePostRequest (content, inReplyTo?, timestamp?)
// Response: 201 Created with PostResponse
// Error: 400 Bad Request if validation fails, the body is invalid, or inReplyTo names an unknown post
// Error: 401 Unauthorized without a valid agent token
// Error: 500 Internal Server Error if the commit fails
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	agent, ok := middleware.AgentFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error(), "")
		return
	}

	req, err := parseJSON[request.CreatePostRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePost(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	var inReplyTo *model.Address
	if req.InReplyTo != "" {
		address := model.Address(req.InReplyTo)
		inReplyTo = &address
	}

	post, err := h.postService.CreatePost(agent, req.Content, inReplyTo, req.Timestamp)
	if err != nil {
		if errors.Is(err, apperrors.ErrReplyTargetMissing) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrReplyTargetMissing.Error(), req.InReplyTo)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreatePost.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, post)
}

// HashPost handles POST requests to compute a post's address without
// committing anything. The address depends on content alone, so the reply
// matches what CreatePost would assign.
//
// Endpoint: POST /api/posts/hash
// Request Body: HashPostRequest (content)
// Response: 200 OK with HashPostResponse
// Error: 400 Bad Request if validation fails or the body is invalid
func (h *PostHandler) HashPost(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.HashPostRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateHashPost(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, HashPostResponse{
		Address: h.postService.HashPost(req.Content),
	})
}

// GetPost handles GET requests to retrieve a post by its address.
//
// Endpoint: GET /api/posts/{address}
// Response: 200 OK with PostResponse
// Error: 400 Bad Request if the address is malformed (validated by middleware)
// Error: 404 Not Found if no post exists at the address
// Error: 500 Internal Server Error if retrieval fails
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	address := model.Address(chi.URLParam(r, "address"))

	post, err := h.postService.GetPost(address)
	if err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPostNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePost.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, post)
}

// MyPosts handles GET requests to retrieve the caller's posts in chain order.
//
// Endpoint: GET /api/posts/mine
// Response: 200 OK with array of PostResponse
// Error: 401 Unauthorized without a valid agent token
// Error: 500 Internal Server Error if retrieval fails
func (h *PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	agent, ok := middleware.AgentFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error(), "")
		return
	}

	posts, err := h.postService.PostsByAgent(agent.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePosts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, posts)
}

// MyPostsAsCommitted handles GET requests to retrieve the caller's posts
// ordered by their producer-supplied timestamps rather than chain position.
// Posts with unparsable timestamps sort before every dated post and keep
// their relative chain order.
//
// Endpoint: GET /api/posts/mine/committed
// Response: 200 OK with array of PostResponse
// Error: 401 Unauthorized without a valid agent token
// Error: 500 Internal Server Error if retrieval fails
func (h *PostHandler) MyPostsAsCommitted(w http.ResponseWriter, r *http.Request) {
	agent, ok := middleware.AgentFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrTokenMissing.Error(), "")
		return
	}

	posts, err := h.postService.PostsByAgentAsCommitted(agent.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePosts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, posts)
}
