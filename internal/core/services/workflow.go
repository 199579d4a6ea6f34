package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Ensure WorkflowService implements the interface.
var _ driving.Workflow = (*WorkflowService)(nil)

// WorkflowService is the mutation surface behind the processing workflow:
// overview read model, mark-processed archival and manual attachment.
type WorkflowService struct {
	store    driven.RelationshipStore
	archiver driving.Archiver

	mu        sync.RWMutex
	listeners []driving.Listener
}

// NewWorkflowService creates a new workflow service.
func NewWorkflowService(store driven.RelationshipStore, archiver driving.Archiver) *WorkflowService {
	return &WorkflowService{
		store:    store,
		archiver: archiver,
	}
}

// Overview returns the read model for all active relationships, with the
// attachment method derived from each one's change history.
func (s *WorkflowService) Overview(ctx context.Context) ([]domain.RelationshipSummary, error) {
	rels, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}

	summaries := make([]domain.RelationshipSummary, 0, len(rels))
	for _, rel := range rels {
		summary := domain.RelationshipSummary{
			ID:          rel.ID,
			OrderNumber: rel.OrderNumber,
			RowData:     rel.RowData,
			HasDocument: rel.HasDocument(),
			Processed:   rel.Processed,
		}
		if rel.HasDocument() {
			summary.DocumentPath = *rel.DocumentPath
			history, err := s.store.History(ctx, rel.ID)
			if err != nil {
				return nil, fmt.Errorf("history for %s: %w", rel.ID, err)
			}
			summary.AttachmentMethod = domain.MethodFromHistory(history)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// MarkProcessed archives the documents of the given relationships. Each
// entry may be a relationship ID or an order number. Failures are counted
// per relationship; the pass continues.
func (s *WorkflowService) MarkProcessed(ctx context.Context, relationshipIDs []string) (driving.ProcessReport, error) {
	logger.Section("Mark processed")

	var report driving.ProcessReport
	for _, key := range relationshipIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rel, err := s.resolve(ctx, key)
		if err != nil {
			logger.Warn("Cannot resolve %q: %v", key, err)
			report.Failed++
			continue
		}

		if _, err := s.archiver.Archive(ctx, rel.ID); err != nil {
			switch {
			case errors.Is(err, domain.ErrNoDocument):
				logger.Info("No document for %s, skipping", rel.OrderNumber)
				report.NoDocument++
			case errors.Is(err, domain.ErrAlreadyProcessed):
				logger.Info("%s already processed, skipping", rel.OrderNumber)
				report.NoDocument++
			default:
				logger.Warn("Archival failed for %s: %v", rel.OrderNumber, err)
				report.Failed++
			}
			continue
		}

		report.Archived++
	}

	s.notifyRefresh()
	logger.Info("Processed pass: %d archived, %d without document, %d failed",
		report.Archived, report.NoDocument, report.Failed)
	return report, nil
}

// AttachDocument manually links a file to a relationship. The file must
// exist. An existing attachment is replaced and the history entry carries
// the caller's reason.
func (s *WorkflowService) AttachDocument(ctx context.Context, relationshipID, path, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: attachment reason required", domain.ErrInvalidInput)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: document %s: %v", domain.ErrInvalidInput, path, err)
	}

	rel, err := s.resolve(ctx, relationshipID)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", relationshipID, err)
	}

	action := domain.ChangeAttach
	if rel.HasDocument() {
		action = domain.ChangeReplace
	}

	if err := s.store.SetDocument(ctx, rel.ID, path, action, reason); err != nil {
		return fmt.Errorf("attach document: %w", err)
	}

	logger.Info("Attached %s to %s (%s)", path, rel.OrderNumber, action)
	s.notifyAttached(rel.ID, path)
	return nil
}

// History exposes the raw change history for audit reporting.
func (s *WorkflowService) History(ctx context.Context, relationshipID string) ([]domain.ChangeEntry, error) {
	rel, err := s.resolve(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", relationshipID, err)
	}

	history, err := s.store.History(ctx, rel.ID)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", rel.ID, err)
	}
	return history, nil
}

// Subscribe registers a listener for change notifications.
func (s *WorkflowService) Subscribe(l driving.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// resolve accepts either a relationship ID or an order number.
func (s *WorkflowService) resolve(ctx context.Context, key string) (*domain.Relationship, error) {
	rel, err := s.store.GetByID(ctx, key)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.store.GetByOrderNumber(ctx, key)
}

func (s *WorkflowService) notifyRefresh() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listeners {
		l.RefreshNeeded()
	}
}

func (s *WorkflowService) notifyAttached(relationshipID, path string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listeners {
		l.DocumentAttached(relationshipID, path)
	}
}
