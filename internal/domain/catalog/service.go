package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/medlab/medlab/internal/domain/lab"
	"github.com/medlab/medlab/internal/platform/apperr"
)

type Service struct {
	catalogs Repository
	labs     lab.Repository
}

func NewService(catalogs Repository, labs lab.Repository) *Service {
	return &Service{catalogs: catalogs, labs: labs}
}

// GetForLab returns the lab's catalog, creating and persisting an empty one
// when the lab exists but has no catalog document yet.
func (s *Service) GetForLab(ctx context.Context, labID string) (*Catalog, error) {
	if _, err := s.labs.GetByID(ctx, labID); err != nil {
		return nil, err
	}

	c, err := s.catalogs.Get(ctx, labID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		c = &Catalog{LabID: labID, Tests: []LabTest{}}
		if err := s.catalogs.Put(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Tests == nil {
		c.Tests = []LabTest{}
	}
	return c, nil
}

func (s *Service) GetTest(ctx context.Context, labID, testID string) (*LabTest, error) {
	c, err := s.catalogs.Get(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := findTest(c.Tests, testID)
	if idx < 0 {
		return nil, apperr.NotFound("test %s not found in lab %s catalog", testID, labID)
	}
	return &c.Tests[idx], nil
}

// Create appends a test type to the lab's catalog under a generated id,
// initializing the catalog document if it does not exist yet.
func (s *Service) Create(ctx context.Context, labID string, t LabTest) (*LabTest, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.labs.GetByID(ctx, labID); err != nil {
		return nil, err
	}

	c, err := s.catalogs.Get(ctx, labID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		c = &Catalog{LabID: labID, Tests: []LabTest{}}
	} else if err != nil {
		return nil, err
	}

	t.ID = uuid.NewString()
	c.Tests = append(c.Tests, t)
	if err := s.catalogs.Put(ctx, c); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update overwrites a test type wholesale, keeping its id.
func (s *Service) Update(ctx context.Context, labID, testID string, t LabTest) (*LabTest, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c, err := s.catalogs.Get(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := findTest(c.Tests, testID)
	if idx < 0 {
		return nil, apperr.NotFound("test %s not found in lab %s catalog", testID, labID)
	}

	t.ID = testID
	c.Tests[idx] = t
	if err := s.catalogs.Put(ctx, c); err != nil {
		return nil, err
	}
	return &t, nil
}

// PatchTest merges a sparse patch into the test type, committing only when
// the result validates.
func (s *Service) PatchTest(ctx context.Context, labID, testID string, p Patch) (*LabTest, error) {
	c, err := s.catalogs.Get(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := findTest(c.Tests, testID)
	if idx < 0 {
		return nil, apperr.NotFound("test %s not found in lab %s catalog", testID, labID)
	}

	patched := c.Tests[idx]
	p.Apply(&patched)
	if err := patched.Validate(); err != nil {
		return nil, err
	}

	c.Tests[idx] = patched
	if err := s.catalogs.Put(ctx, c); err != nil {
		return nil, err
	}
	return &patched, nil
}

func (s *Service) Delete(ctx context.Context, labID, testID string) error {
	c, err := s.catalogs.Get(ctx, labID)
	if err != nil {
		return err
	}

	idx := findTest(c.Tests, testID)
	if idx < 0 {
		return apperr.NotFound("test %s not found in lab %s catalog", testID, labID)
	}

	c.Tests = append(c.Tests[:idx], c.Tests[idx+1:]...)
	return s.catalogs.Put(ctx, c)
}

func findTest(tests []LabTest, testID string) int {
	for i, t := range tests {
		if t.ID == testID {
			return i
		}
	}
	return -1
}
