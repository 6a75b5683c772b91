package catalog

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

func (r *docRepo) Get(ctx context.Context, labID string) (*Catalog, error) {
	doc, err := r.store.Load(ctx, labID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("no test catalog for lab %s", labID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load test catalog")
	}

	var c Catalog
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, apperr.Internal(err, "decode test catalog document")
	}
	return &c, nil
}

func (r *docRepo) Put(ctx context.Context, c *Catalog) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return apperr.Internal(err, "encode test catalog document")
	}
	if err := r.store.Put(ctx, c.LabID, doc); err != nil {
		return apperr.Internal(err, "store test catalog")
	}
	return nil
}
