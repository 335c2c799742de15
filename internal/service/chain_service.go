package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/timestamp"
)

// auditConcurrency caps how many agent chains are walked in parallel
// during an audit pass.
const auditConcurrency = 4

// ChainService handles the append-only record chains. It assigns chain
// positions when records are committed and audits stored chains for
// linkage, timestamp and canonicalization problems.
type ChainService struct {
	agentRepo  *repository.AgentRepository
	recordRepo *repository.RecordRepository
}

// NewChainService creates a new ChainService with the provided repository dependencies.
func NewChainService(
	agentRepo *repository.AgentRepository,
	recordRepo *repository.RecordRepository,
) *ChainService {
	return &ChainService{
		agentRepo:  agentRepo,
		recordRepo: recordRepo,
	}
}

// CommitRecord appends a record to the agent's chain, linking it to the
// current head. The canonical timestamp is computed here once; records
// whose raw timestamp does not validate are committed without one.
func (s *ChainService) CommitRecord(agentID, recordType string, entryAddress model.Address, inReplyTo *model.Address, stamp timestamp.Timestamp) (model.Record, error) {
	head, err := s.recordRepo.GetChainHead(agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrChainEmpty) {
			return model.Record{}, fmt.Errorf("%w: agent %s has no genesis record", apperrors.ErrDataInconsistency, agentID)
		}
		return model.Record{}, err
	}

	record := model.Record{
		ID:           uuid.New().String(),
		AgentID:      agentID,
		Type:         recordType,
		EntryAddress: entryAddress,
		InReplyTo:    inReplyTo,
		Timestamp:    stamp,
		PrevID:       &head.ID,
		Seq:          head.Seq + 1,
	}

	if instant, err := stamp.Instant(); err == nil {
		canonical := instant.RFC3339()
		record.Canonical = &canonical
	}

	if err := s.recordRepo.CreateRecord(record); err != nil {
		return model.Record{}, err
	}

	return record, nil
}

// GetChain retrieves an agent's full chain in commit order.
func (s *ChainService) GetChain(agentID string) ([]model.Record, error) {
	if _, err := s.agentRepo.GetAgentOnID(agentID); err != nil {
		return nil, err
	}

	return s.recordRepo.GetRecordsOnAgentID(agentID)
}

// chainFindings collects what the audit of a single chain turned up.
type chainFindings struct {
	records int
	invalid []model.AuditIssue
	drift   []model.AuditIssue
	broken  []model.AuditIssue
}

// AuditChains walks every stored chain and reports records with unparsable
// timestamps, records whose stored canonical form no longer matches the
// recomputed one, and linkage damage (sequence gaps, dangling previous-record
// links, missing genesis records, entries that never arrived).
//
// Unparsable timestamps are reported, not repaired: raw timestamps are kept
// verbatim so a later, more permissive reading stays possible.
func (s *ChainService) AuditChains() (model.ChainAuditReport, error) {
	agents, err := s.agentRepo.GetAgents()
	if err != nil {
		return model.ChainAuditReport{}, err
	}

	// Each goroutine writes only its own slot, so the merge below needs no lock.
	findings := make([]chainFindings, len(agents))

	var g errgroup.Group
	g.SetLimit(auditConcurrency)

	for i, agent := range agents {
		i, agent := i, agent // per-iteration copies; required while go.mod targets go < 1.22
		g.Go(func() error {
			records, err := s.recordRepo.GetRecordsOnAgentID(agent.ID)
			if err != nil {
				return err
			}
			findings[i] = auditChain(agent.ID, records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.ChainAuditReport{}, fmt.Errorf("failed to audit chains: %w", err)
	}

	report := model.ChainAuditReport{AgentsChecked: len(agents)}
	for _, f := range findings {
		report.RecordsChecked += f.records
		report.InvalidTimestamps = append(report.InvalidTimestamps, f.invalid...)
		report.CanonicalDrift = append(report.CanonicalDrift, f.drift...)
		report.BrokenLinks = append(report.BrokenLinks, f.broken...)
	}

	missing, err := s.recordRepo.GetRecordsMissingEntries()
	if err != nil {
		return model.ChainAuditReport{}, err
	}
	for _, record := range missing {
		report.BrokenLinks = append(report.BrokenLinks, model.AuditIssue{
			RecordID: record.ID,
			AgentID:  record.AgentID,
			Detail:   fmt.Sprintf("no entry stored for address %s", record.EntryAddress),
		})
	}

	return report, nil
}

// auditChain checks a single chain. Records arrive in commit order.
func auditChain(agentID string, records []model.Record) chainFindings {
	findings := chainFindings{records: len(records)}

	broken := func(recordID, detail string) {
		findings.broken = append(findings.broken, model.AuditIssue{
			RecordID: recordID, AgentID: agentID, Detail: detail,
		})
	}

	if len(records) == 0 {
		broken("", "chain has no genesis record")
		return findings
	}

	for i, record := range records {
		switch {
		case i == 0:
			if record.Type != model.RecordTypeGenesis {
				broken(record.ID, "chain does not start with a genesis record")
			}
			if record.Seq != 1 {
				broken(record.ID, fmt.Sprintf("chain starts at sequence %d", record.Seq))
			}
			if record.PrevID != nil {
				broken(record.ID, "genesis record links to a previous record")
			}
		default:
			prev := records[i-1]
			if record.Type == model.RecordTypeGenesis {
				broken(record.ID, "genesis record after chain start")
			}
			if record.Seq != prev.Seq+1 {
				broken(record.ID, fmt.Sprintf("sequence gap: %d follows %d", record.Seq, prev.Seq))
			}
			if record.PrevID == nil {
				broken(record.ID, "missing previous-record link")
			} else if *record.PrevID != prev.ID {
				broken(record.ID, "previous-record link does not match chain order")
			}
		}

		instant, err := record.Timestamp.Instant()
		if err != nil {
			findings.invalid = append(findings.invalid, model.AuditIssue{
				RecordID: record.ID, AgentID: agentID, Detail: err.Error(),
			})
			if record.Canonical != nil {
				findings.drift = append(findings.drift, model.AuditIssue{
					RecordID: record.ID, AgentID: agentID,
					Detail: fmt.Sprintf("canonical form %q stored for unparsable timestamp", *record.Canonical),
				})
			}
			continue
		}

		want := instant.RFC3339()
		switch {
		case record.Canonical == nil:
			findings.drift = append(findings.drift, model.AuditIssue{
				RecordID: record.ID, AgentID: agentID,
				Detail: fmt.Sprintf("canonical form missing, expected %q", want),
			})
		case *record.Canonical != want:
			findings.drift = append(findings.drift, model.AuditIssue{
				RecordID: record.ID, AgentID: agentID,
				Detail: fmt.Sprintf("stored canonical form %q, recomputed %q", *record.Canonical, want),
			})
		}
	}

	return findings
}
