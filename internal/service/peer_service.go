package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/peer"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// PeerService imports agents, chain records and post entries from another
// backend. Imported timestamps are stored exactly as served, so a peer's
// unparsable timestamps survive the transfer; validation stays deferred to
// comparison and rendering, the same as for locally committed posts.
type PeerService struct {
	client           peer.Client
	agentRepo        *repository.AgentRepository
	recordRepo       *repository.RecordRepository
	postRepo         *repository.PostRepository
	developerService *DeveloperService
}

// NewPeerService creates a new PeerService with the provided dependencies.
func NewPeerService(
	client peer.Client,
	agentRepo *repository.AgentRepository,
	recordRepo *repository.RecordRepository,
	postRepo *repository.PostRepository,
	developerService *DeveloperService,
) *PeerService {
	return &PeerService{
		client:           client,
		agentRepo:        agentRepo,
		recordRepo:       recordRepo,
		postRepo:         postRepo,
		developerService: developerService,
	}
}

// ImportFromPeer pulls every chain the peer serves and appends the records
// this backend has not seen yet. Records already present locally (by chain
// position) are left untouched: the first committed record wins.
func (s *PeerService) ImportFromPeer(ctx context.Context) (model.PeerImportReport, error) {
	report := model.PeerImportReport{}

	agents, err := s.client.FetchAgents(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %v", apperrors.ErrFailedToReachPeer, err)
	}
	report.AgentsSeen = len(agents)

	for _, remote := range agents {
		if err := s.importAgent(ctx, remote, &report); err != nil {
			return report, err
		}
	}

	s.developerService.Log("info", "peer",
		fmt.Sprintf("peer import finished: %d agents seen, %d created, %d records imported, %d posts fetched, %d records skipped",
			report.AgentsSeen, report.AgentsCreated, report.RecordsImported, report.PostsFetched, report.RecordsSkipped),
		"", "peer_import")

	return report, nil
}

func (s *PeerService) importAgent(ctx context.Context, remote peer.RemoteAgent, report *model.PeerImportReport) error {
	_, err := s.agentRepo.GetAgentOnID(remote.ID)
	if errors.Is(err, apperrors.ErrAgentNotFound) {
		createdAt, err := repository.ParseTime(remote.CreatedAt)
		if err != nil {
			createdAt = time.Now().UTC()
		}

		agent := model.Agent{ID: remote.ID, Nickname: remote.Nickname, CreatedAt: createdAt}
		if err := s.agentRepo.CreateAgent(agent); err != nil {
			return fmt.Errorf("%w: agent %s: %v", apperrors.ErrFailedToCreateAgent, remote.ID, err)
		}
		report.AgentsCreated++
	} else if err != nil {
		return err
	}

	localSeq := 0
	head, err := s.recordRepo.GetChainHead(remote.ID)
	if err == nil {
		localSeq = head.Seq
	} else if !errors.Is(err, apperrors.ErrChainEmpty) {
		return err
	}

	records, err := s.client.FetchAgentRecords(ctx, remote.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToReachPeer, err)
	}

	// Records arrive in commit order, so previous-record links resolve as
	// long as nothing beyond the local head is skipped.
	for _, remoteRecord := range records {
		if remoteRecord.Seq <= localSeq {
			report.RecordsSkipped++
			continue
		}

		if remoteRecord.Type == model.RecordTypePost {
			s.fetchEntry(ctx, remoteRecord.EntryAddress, report)
		}

		record := model.Record{
			ID:           remoteRecord.ID,
			AgentID:      remoteRecord.AgentID,
			Type:         remoteRecord.Type,
			EntryAddress: model.Address(remoteRecord.EntryAddress),
			Timestamp:    timestamp.New(remoteRecord.Timestamp),
			Canonical:    remoteRecord.Canonical,
			PrevID:       remoteRecord.PrevID,
			Seq:          remoteRecord.Seq,
		}
		if remoteRecord.InReplyTo != nil {
			address := model.Address(*remoteRecord.InReplyTo)
			record.InReplyTo = &address
		}

		if err := s.recordRepo.CreateRecord(record); err != nil {
			return fmt.Errorf("%w: record %s: %v", apperrors.ErrFailedToImportRecord, remoteRecord.ID, err)
		}
		report.RecordsImported++
	}

	return nil
}

// fetchEntry pulls the post entry behind a record. A missing or corrupt
// entry does not block the record import: the chain audit keeps reporting
// the record until a clean entry arrives.
func (s *PeerService) fetchEntry(ctx context.Context, address string, report *model.PeerImportReport) {
	remotePost, err := s.client.FetchPost(ctx, address)
	if err != nil {
		s.developerService.Log("warning", "peer",
			fmt.Sprintf("entry %s not served by peer", address), err.Error(), "peer_import")
		return
	}

	// The address must re-derive from the content, otherwise the entry was
	// tampered with in transit and gets dropped.
	if model.NewAddress([]byte(remotePost.Content)) != model.Address(remotePost.Address) {
		s.developerService.Log("warning", "peer",
			fmt.Sprintf("entry %s failed content address check", address), "", "peer_import")
		return
	}

	post := model.Post{
		Address:     model.Address(remotePost.Address),
		Content:     remotePost.Content,
		DateCreated: timestamp.New(remotePost.DateCreatedRaw),
	}

	if err := s.postRepo.CreatePost(post); err != nil {
		s.developerService.Log("warning", "peer",
			fmt.Sprintf("failed to store entry %s", address), err.Error(), "peer_import")
		return
	}

	report.PostsFetched++
}
