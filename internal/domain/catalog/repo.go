package catalog

import "context"

// Repository is the catalog access layer: one whole document per lab.
type Repository interface {
	// Get returns the catalog stored for labID, apperr.KindNotFound if absent.
	Get(ctx context.Context, labID string) (*Catalog, error)
	// Put writes the whole catalog document, overwriting any previous version.
	Put(ctx context.Context, c *Catalog) error
}
