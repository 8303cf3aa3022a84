package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"
)

// Source provides the backend reads a Snapshot is built from. api.Client
// implements it.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// Loader builds snapshots from a Source.
type Loader struct {
	src Source
}

// NewLoader creates a Loader over the given Source.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load fetches products and customers concurrently and returns a fresh
// Snapshot. Either fetch failing fails the load; the order screen needs both.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	var (
		products  []Product
		customers []Customer
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.src.ListProducts(ctx)
		return errors.Wrap(err, "list products")
	})
	g.Go(func() error {
		var err error
		customers, err = l.src.ListCustomers(ctx)
		return errors.Wrap(err, "list customers")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewSnapshot(products, customers), nil
}
