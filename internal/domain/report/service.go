// Package report manages the diagnostic reports embedded in a lab document.
// Every mutation loads the parent lab, edits the report slice in memory and
// writes the whole document back: the store has no sub-document updates, so
// concurrent writers to the same lab are last-write-wins.
package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlab/medlab/internal/domain/lab"
	"github.com/medlab/medlab/internal/platform/apperr"
)

type Service struct {
	labs lab.Repository
}

func NewService(labs lab.Repository) *Service {
	return &Service{labs: labs}
}

func (s *Service) ListForLab(ctx context.Context, labID string) ([]lab.Report, error) {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}
	if l.Reports == nil {
		return []lab.Report{}, nil
	}
	return l.Reports, nil
}

// Add appends a new report to the lab under a generated id.
func (s *Service) Add(ctx context.Context, labID string, r lab.Report) (*lab.Report, error) {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	r.ReportID = uuid.NewString()
	if r.Tests == nil {
		r.Tests = []lab.Test{}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	l.Reports = append(l.Reports, r)
	if err := s.labs.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return &r, nil
}

// Replace overwrites an existing report wholesale, keeping its id.
func (s *Service) Replace(ctx context.Context, labID, reportID string, r lab.Report) (*lab.Report, error) {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := findReport(l.Reports, reportID)
	if idx < 0 {
		return nil, apperr.NotFound("report %s not found in lab %s", reportID, labID)
	}

	r.ReportID = reportID
	if r.Tests == nil {
		r.Tests = []lab.Test{}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	l.Reports[idx] = r
	if err := s.labs.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return &r, nil
}

// Patch merges a sparse patch into the report's patient fields. The merge
// runs on a copy and is committed only when the result validates.
func (s *Service) Patch(ctx context.Context, labID, reportID string, p lab.ReportPatch) (*lab.Report, error) {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := findReport(l.Reports, reportID)
	if idx < 0 {
		return nil, apperr.NotFound("report %s not found in lab %s", reportID, labID)
	}

	patched := l.Reports[idx]
	if err := p.Apply(&patched); err != nil {
		return nil, err
	}
	if err := patched.Validate(); err != nil {
		return nil, err
	}

	l.Reports[idx] = patched
	if err := s.labs.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return &patched, nil
}

func (s *Service) Delete(ctx context.Context, labID, reportID string) error {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return err
	}

	idx := findReport(l.Reports, reportID)
	if idx < 0 {
		return apperr.NotFound("report %s not found in lab %s", reportID, labID)
	}

	l.Reports = append(l.Reports[:idx], l.Reports[idx+1:]...)
	return s.labs.Upsert(ctx, l)
}

// DeleteAll clears every report from the lab.
func (s *Service) DeleteAll(ctx context.Context, labID string) error {
	l, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		return err
	}

	l.Reports = []lab.Report{}
	return s.labs.Upsert(ctx, l)
}

func findReport(reports []lab.Report, reportID string) int {
	for i, r := range reports {
		if r.ReportID == reportID {
			return i
		}
	}
	return -1
}
