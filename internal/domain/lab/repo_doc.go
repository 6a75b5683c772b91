package lab

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/medlab/medlab/internal/platform/apperr"
	"github.com/medlab/medlab/internal/platform/docstore"
)

type docRepo struct {
	store docstore.Store
}

// NewDocRepo returns a Repository backed by a document store keyed by lab id.
func NewDocRepo(store docstore.Store) Repository {
	return &docRepo{store: store}
}

func (r *docRepo) GetByID(ctx context.Context, labID string) (*Lab, error) {
	doc, err := r.store.Load(ctx, labID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("lab %s not found", labID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load lab")
	}

	var l Lab
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, apperr.Internal(err, "decode lab document")
	}
	return &l, nil
}

// GetByEmail scans the full collection and filters by exact email equality.
// Linear in the number of labs; acceptable at this system's scale since
// email lookups happen only on registration and login.
func (r *docRepo) GetByEmail(ctx context.Context, email string) (*Lab, error) {
	docs, err := r.store.Scan(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "scan labs")
	}

	for _, doc := range docs {
		var l Lab
		if err := json.Unmarshal(doc, &l); err != nil {
			return nil, apperr.Internal(err, "decode lab document")
		}
		if l.LabEmail == email {
			return &l, nil
		}
	}
	return nil, apperr.NotFound("no lab registered under %s", email)
}

func (r *docRepo) List(ctx context.Context) ([]*Lab, error) {
	docs, err := r.store.Scan(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "scan labs")
	}

	labs := make([]*Lab, 0, len(docs))
	for _, doc := range docs {
		var l Lab
		if err := json.Unmarshal(doc, &l); err != nil {
			return nil, apperr.Internal(err, "decode lab document")
		}
		labs = append(labs, &l)
	}
	return labs, nil
}

func (r *docRepo) Upsert(ctx context.Context, l *Lab) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return apperr.Internal(err, "encode lab document")
	}
	if err := r.store.Put(ctx, l.LabID, doc); err != nil {
		return apperr.Internal(err, "store lab")
	}
	return nil
}

func (r *docRepo) Delete(ctx context.Context, labID string) (bool, error) {
	existed, err := r.store.Delete(ctx, labID)
	if err != nil {
		return false, apperr.Internal(err, "delete lab")
	}
	return existed, nil
}
