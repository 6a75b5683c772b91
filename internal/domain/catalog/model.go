// Package catalog manages the test types a lab offers. The catalog is its
// own document keyed by the owning lab's id, independent of the lab's
// embedded reports.
package catalog

import "github.com/medlab/medlab/internal/platform/apperr"

// Catalog holds every test type offered by one lab.
type Catalog struct {
	LabID string    `json:"labId"`
	Tests []LabTest `json:"tests"`
}

// LabTest describes one orderable test type.
type LabTest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	ReferenceValue string `json:"referenceValue"`
}

func (t *LabTest) Validate() error {
	if t.Name == "" {
		return apperr.Validation([]string{"name"})
	}
	return nil
}

// Patch is a sparse update for a test type; empty fields keep their stored
// values.
type Patch struct {
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	ReferenceValue string `json:"referenceValue"`
}

func (p Patch) Apply(t *LabTest) {
	if p.Name != "" {
		t.Name = p.Name
	}
	if p.Unit != "" {
		t.Unit = p.Unit
	}
	if p.ReferenceValue != "" {
		t.ReferenceValue = p.ReferenceValue
	}
}
