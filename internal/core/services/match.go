package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/identifier"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// dueDateLayouts are the formats accepted for the business due date.
var dueDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

// Ensure MatchService implements the interface.
var _ driving.Matcher = (*MatchService)(nil)

// MatchOptions configures the matching pass.
type MatchOptions struct {
	// SkipPastDue short-circuits attaches for relationships whose due
	// date lies strictly before today. Off by default: a late document
	// for a past-due order would otherwise never be auto-matched.
	SkipPastDue bool

	// DueDateColumn names the row column holding the due date.
	// Only consulted when SkipPastDue is set.
	DueDateColumn string

	// Now overrides the reference time. Defaults to time.Now.
	Now func() time.Time

	// Extractor supplies document text for candidates whose filename
	// yields no identifier. Optional; without one such candidates are
	// counted unmatched.
	Extractor driven.TextExtractor
}

// MatchService attaches unclaimed candidate files to relationships by
// extracted identifier.
type MatchService struct {
	store driven.RelationshipStore
	opts  MatchOptions
}

// NewMatchService creates a new match service.
func NewMatchService(store driven.RelationshipStore, opts MatchOptions) *MatchService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MatchService{store: store, opts: opts}
}

// Match processes the candidate paths. First match wins: an existing
// attachment is never overwritten; replacing one takes a human action.
// Each attach is its own commit.
func (s *MatchService) Match(ctx context.Context, paths []string) (driving.MatchReport, error) {
	logger.Section("Document Matching")
	logger.Debug("Candidates: %d", len(paths))

	var report driving.MatchReport

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		orderNumber, ok := s.identify(ctx, path)
		if !ok {
			report.Unmatched++
			logger.Warn("No identifier extracted from %s", path)
			continue
		}

		rel, err := s.store.GetByOrderNumber(ctx, orderNumber)
		if errors.Is(err, domain.ErrNotFound) {
			report.Unmatched++
			logger.Warn("No relationship for identifier %s (%s)", orderNumber, path)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("lookup %s: %w", orderNumber, err)
		}

		if rel.HasDocument() {
			// Already satisfied; not an unmatched condition.
			report.AlreadyAttached++
			continue
		}

		if s.opts.SkipPastDue && s.pastDue(rel) {
			report.Skipped++
			logger.Debug("Skipping past-due %s", orderNumber)
			continue
		}

		err = s.store.SetDocument(ctx, rel.ID, path, domain.ChangeAttach, domain.ReasonAutomaticMatching)
		if errors.Is(err, domain.ErrDocumentConflict) {
			report.Unmatched++
			logger.Warn("Path %s already claimed elsewhere", path)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("attach %s: %w", path, err)
		}

		report.Matched++
		logger.Debug("Attached %s to %s", path, orderNumber)
	}

	logger.Info("Match complete: %d matched, %d unmatched, %d already attached, %d skipped",
		report.Matched, report.Unmatched, report.AlreadyAttached, report.Skipped)
	return report, nil
}

// identify resolves a candidate's order number. The filename is tried
// first; document text is only extracted when the filename yields
// nothing. Extraction failures degrade to unmatched, never abort the
// pass.
func (s *MatchService) identify(ctx context.Context, path string) (string, bool) {
	if id, ok := identifier.FromFilename(path); ok {
		return id, true
	}
	if s.opts.Extractor == nil {
		return "", false
	}
	text, err := s.opts.Extractor.ExtractText(ctx, path)
	if err != nil {
		logger.Debug("Text extraction failed for %s: %v", path, err)
		return "", false
	}
	return identifier.Extract(path, text)
}

// pastDue reports whether the relationship's due date lies strictly
// before today. Unparseable or absent dates never skip.
func (s *MatchService) pastDue(rel *domain.Relationship) bool {
	raw, ok := rel.RowData.Get(s.opts.DueDateColumn)
	if !ok || strings.TrimSpace(raw) == "" {
		return false
	}

	due, ok := parseDueDate(strings.TrimSpace(raw))
	if !ok {
		logger.Debug("Unparseable due date %q for %s", raw, rel.OrderNumber)
		return false
	}

	now := s.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

func parseDueDate(value string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
