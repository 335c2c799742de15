package service

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// PostService handles post-related business logic operations.
// It stores content-addressed post entries and appends the records that
// commit them to the posting agent's chain.
type PostService struct {
	postRepo     *repository.PostRepository
	agentRepo    *repository.AgentRepository
	chainService *ChainService
}

// NewPostService creates a new PostService with the provided dependencies.
func NewPostService(
	postRepo *repository.PostRepository,
	agentRepo *repository.AgentRepository,
	chainService *ChainService,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		agentRepo:    agentRepo,
		chainService: chainService,
	}
}

// HashPost computes the address a post with the given content would have
// once committed. Addresses depend on content alone, so this is pure.
func (s *PostService) HashPost(content string) model.Address {
	return model.NewAddress([]byte(content))
}

// CreatePost stores a post entry and commits it to the agent's chain.
//
// The raw timestamp is stored exactly as the producer supplied it, valid or
// not; when it canonicalizes, the canonical form is recorded alongside. An
// empty timestamp means the server stamps the post itself. If inReplyTo is
// set, the referenced post must already exist.
func (s *PostService) CreatePost(agent model.Agent, content string, inReplyTo *model.Address, rawTimestamp string) (model.PostResponse, error) {
	if rawTimestamp == "" {
		rawTimestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if inReplyTo != nil {
		if _, err := s.postRepo.GetPostOnAddress(*inReplyTo); err != nil {
			if errors.Is(err, apperrors.ErrPostNotFound) {
				return model.PostResponse{}, apperrors.ErrReplyTargetMissing
			}
			return model.PostResponse{}, err
		}
	}

	post := model.Post{
		Address:     model.NewAddress([]byte(content)),
		Content:     content,
		DateCreated: timestamp.New(rawTimestamp),
	}

	if err := s.postRepo.CreatePost(post); err != nil {
		return model.PostResponse{}, err
	}

	record, err := s.chainService.CommitRecord(agent.ID, model.RecordTypePost, post.Address, inReplyTo, post.DateCreated)
	if err != nil {
		return model.PostResponse{}, fmt.Errorf("failed to commit post record: %w", err)
	}

	return toPostResponse(post, &record), nil
}

// GetPost retrieves a post entry by its address. Reply linkage lives on
// chain records, not on the entry, so InReplyTo stays empty here.
func (s *PostService) GetPost(address model.Address) (model.PostResponse, error) {
	post, err := s.postRepo.GetPostOnAddress(address)
	if err != nil {
		return model.PostResponse{}, err
	}

	return toPostResponse(post, nil), nil
}

// PostsByAgent retrieves the posts an agent committed, in chain order.
func (s *PostService) PostsByAgent(agentID string) ([]model.PostResponse, error) {
	if _, err := s.agentRepo.GetAgentOnID(agentID); err != nil {
		return nil, err
	}

	recorded, err := s.postRepo.GetPostsOnAgentID(agentID)
	if err != nil {
		return nil, err
	}

	responses := []model.PostResponse{}
	for _, rp := range recorded {
		responses = append(responses, toPostResponse(rp.Post, &rp.Record))
	}

	return responses, nil
}

// PostsByAgentAsCommitted retrieves an agent's posts ordered by their
// producer-supplied timestamps instead of chain position. Posts whose
// timestamps do not parse sort before all dated posts; the sort is stable,
// so unparsable and equally-dated posts keep their chain order.
func (s *PostService) PostsByAgentAsCommitted(agentID string) ([]model.PostResponse, error) {
	if _, err := s.agentRepo.GetAgentOnID(agentID); err != nil {
		return nil, err
	}

	recorded, err := s.postRepo.GetPostsOnAgentID(agentID)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(recorded, func(a, b model.RecordedPost) int {
		return a.Post.DateCreated.SortCompare(b.Post.DateCreated)
	})

	responses := []model.PostResponse{}
	for _, rp := range recorded {
		responses = append(responses, toPostResponse(rp.Post, &rp.Record))
	}

	return responses, nil
}

// toPostResponse renders a post for the API: the raw timestamp always, the
// canonical form when the raw text validates, the failure otherwise.
func toPostResponse(post model.Post, record *model.Record) model.PostResponse {
	resp := model.PostResponse{
		Address:        post.Address,
		Content:        post.Content,
		DateCreatedRaw: post.DateCreated.Raw(),
	}

	if instant, err := post.DateCreated.Instant(); err == nil {
		resp.DateCreated = instant.RFC3339()
	} else {
		resp.TimestampError = err.Error()
	}

	if record != nil {
		resp.InReplyTo = record.InReplyTo
	}

	return resp
}
