package lab

import "context"

// Repository is the lab access layer over the document store.
type Repository interface {
	// GetByID returns the lab stored under labID, apperr.KindNotFound if absent.
	GetByID(ctx context.Context, labID string) (*Lab, error)
	// GetByEmail returns the lab registered under email, apperr.KindNotFound
	// if none matches.
	GetByEmail(ctx context.Context, email string) (*Lab, error)
	// List returns every lab ordered by id.
	List(ctx context.Context) ([]*Lab, error)
	// Upsert writes the whole lab document, overwriting any previous version.
	Upsert(ctx context.Context, l *Lab) error
	// Delete removes the lab document, reporting whether it existed.
	Delete(ctx context.Context, labID string) (bool, error)
}
